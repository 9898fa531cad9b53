package command

import (
	"time"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/message"
)

// ArgError describes one schema violation, surfaced to the caller as
// transient feedback.
type ArgError struct {
	Field   string
	Kind    Kind
	Message string
}

// Context is the per-invocation execution context handed to a command
// handler. Built fresh from one message, discarded when the run completes.
// Exactly one of these holds: Command resolved with valid Args, Command
// resolved with ArgErrors, or Command nil.
type Context struct {
	InvocationID string
	Message      *message.Inbound

	CallerID   string
	CallerTag  string
	CallerName string
	IsDM       bool

	Command  *Command
	ViaAlias bool
	Prefix   string

	RawArgs   []string
	Flags     map[string]string
	Args      map[string]any
	ArgErrors []ArgError
	Rest      string

	PermissionLevel int
	At              time.Time

	Bus *events.Bus

	// Collaborators commands may need; wired by the pipeline.
	Registry *Registry
	Services Services
}

// Services bundles the process collaborators a handler can call into.
// Plain function fields keep command definitions testable without wiring
// the real storage or listener engine.
type Services struct {
	GuildPrefix      func(guildID string) string
	SetGuildPrefix   func(guildID, prefix string) error
	ClearGuildPrefix func(guildID string) error
	Ignore           func(scopeID string, d time.Duration)
	Unignore         func(scopeID string)
	TierName         func(level int) string
}

// Reply sends content back to the originating channel.
func (c *Context) Reply(content string) (*message.Handle, error) {
	return c.Message.Responder.Send(c.Message.ChannelID, content)
}

// String returns the named argument as a string, with ok reporting presence.
func (c *Context) String(name string) (string, bool) {
	v, ok := c.Args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the named argument as a float64.
func (c *Context) Number(name string) (float64, bool) {
	v, ok := c.Args[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// Bool returns the named argument as a bool.
func (c *Context) Bool(name string) (bool, bool) {
	v, ok := c.Args[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
