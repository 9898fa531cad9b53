package events

import (
	"sync"
	"sync/atomic"
)

type Kind string

const (
	KindError    Kind = "error"
	KindWarn     Kind = "warn"
	KindCommand  Kind = "command"
	KindListener Kind = "listener"
	KindDebug    Kind = "debug"
)

// Event is one named report on the process channel. Fields carry flat
// string context (guild, channel, command, ...) for whoever consumes it.
type Event struct {
	Kind    Kind
	Message string
	Err     error
	Fields  map[string]string
}

// Bus is the process-wide event channel. The dispatch core and the listener
// engine only publish; consumers (log sink, usage recorder) subscribe.
type Bus struct {
	mu      sync.RWMutex
	subs    []chan Event
	closed  bool
	dropped atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a receive channel with the given buffer. Subscribers that
// fall behind lose events rather than stall publishers.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers evt to every subscriber without blocking.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// avoid blocking; drop if the subscriber is too far behind
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many events were discarded on full subscribers.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels. Publishing afterwards is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

func (b *Bus) Error(msg string, err error, fields map[string]string) {
	b.Publish(Event{Kind: KindError, Message: msg, Err: err, Fields: fields})
}

func (b *Bus) Warn(msg string, err error, fields map[string]string) {
	b.Publish(Event{Kind: KindWarn, Message: msg, Err: err, Fields: fields})
}

func (b *Bus) Debug(msg string, fields map[string]string) {
	b.Publish(Event{Kind: KindDebug, Message: msg, Fields: fields})
}

func (b *Bus) Command(msg string, fields map[string]string) {
	b.Publish(Event{Kind: KindCommand, Message: msg, Fields: fields})
}

func (b *Bus) Listener(msg string, fields map[string]string) {
	b.Publish(Event{Kind: KindListener, Message: msg, Fields: fields})
}
