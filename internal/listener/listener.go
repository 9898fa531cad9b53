package listener

import (
	"fmt"
	"sync"
	"time"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/match"
	"github.com/codekaffe/sensum/internal/message"
)

const (
	defaultPriority  = 100
	defaultCooldown  = 10 * time.Second
	defaultMaxLength = 256
)

// Context is the shared per-message value handed to every listener that
// matches the message. Values is scratch space listeners in different
// categories can use to coordinate.
type Context struct {
	Message *message.Inbound
	Bus     *events.Bus

	mu     sync.Mutex
	values map[string]any
}

func newContext(m *message.Inbound, bus *events.Bus) *Context {
	return &Context{Message: m, Bus: bus, values: make(map[string]any)}
}

func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Reply sends content to the channel the message came from.
func (c *Context) Reply(content string) (*message.Handle, error) {
	return c.Message.Responder.Send(c.Message.ChannelID, content)
}

// Listener reacts to messages that match its patterns. Priority orders
// listeners inside a category (lower runs earlier, registration order breaks
// ties). Cooldown is per caller; GlobalCooldown, when set, additionally
// throttles the listener for a whole guild regardless of caller.
type Listener struct {
	Name           string
	Category       string
	Patterns       []match.Pattern
	Priority       int
	Cooldown       time.Duration
	GlobalCooldown time.Duration
	MaxLength      int
	Run            func(ctx *Context) error

	seq int // registration order, set by the engine
}

// New validates a listener definition and applies defaults. Name, category,
// at least one pattern, and a handler are mandatory.
func New(l Listener) (*Listener, error) {
	if l.Name == "" {
		return nil, fmt.Errorf("listener: name is required")
	}
	if l.Category == "" {
		return nil, fmt.Errorf("listener %q: category is required", l.Name)
	}
	if len(l.Patterns) == 0 {
		return nil, fmt.Errorf("listener %q: at least one pattern is required", l.Name)
	}
	for _, p := range l.Patterns {
		if len(p) == 0 {
			return nil, fmt.Errorf("listener %q: empty pattern", l.Name)
		}
	}
	if l.Run == nil {
		return nil, fmt.Errorf("listener %q: handler is required", l.Name)
	}
	if l.Priority == 0 {
		l.Priority = defaultPriority
	}
	if l.Cooldown == 0 {
		l.Cooldown = defaultCooldown
	}
	if l.MaxLength == 0 {
		l.MaxLength = defaultMaxLength
	}
	return &l, nil
}

func (l *Listener) matches(content string) bool {
	for _, p := range l.Patterns {
		if match.Match(content, p) {
			return true
		}
	}
	return false
}
