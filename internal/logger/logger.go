// Package logger renders process events. It is the one consumer that turns
// the event bus into something a human reads: console output plus a rotating
// file.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codekaffe/sensum/internal/events"
)

// Sink consumes the event bus and writes structured log lines.
type Sink struct {
	log  zerolog.Logger
	file io.Closer
}

// New builds a sink writing to stderr (console format) and a rotating file
// at path. An empty path disables the file output.
func New(path, level string) *Sink {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}}

	var file io.Closer
	if path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writers = append(writers, rotator)
		file = rotator
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	return &Sink{log: log, file: file}
}

// Consume drains the subscription until the bus closes it. Run in its own
// goroutine.
func (s *Sink) Consume(ch <-chan events.Event) {
	for evt := range ch {
		s.write(evt)
	}
}

func (s *Sink) write(evt events.Event) {
	var e *zerolog.Event
	switch evt.Kind {
	case events.KindError:
		e = s.log.Error()
	case events.KindWarn:
		e = s.log.Warn()
	case events.KindDebug:
		e = s.log.Debug()
	default:
		e = s.log.Info()
	}
	e = e.Str("event", string(evt.Kind))
	if evt.Err != nil {
		e = e.Err(evt.Err)
	}
	for k, v := range evt.Fields {
		e = e.Str(k, v)
	}
	e.Msg(evt.Message)
}

// Close flushes and closes the rotating file, if any.
func (s *Sink) Close() {
	if s.file != nil {
		_ = s.file.Close()
	}
}
