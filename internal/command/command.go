package command

import (
	"fmt"
	"strings"
)

// Kind tags the primitive an argument validates as. KindAny is the explicit
// unvalidated fallback: it accepts whatever token was bound.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindUser
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindUser:
		return "user"
	case KindAny:
		return "any"
	}
	return "unknown"
}

// Arg is one named positional parameter. Schema order determines binding.
type Arg struct {
	Name string
	Kind Kind
}

// RunContext names where a command may be invoked.
type RunContext string

const (
	ContextDM    RunContext = "direct-message"
	ContextGuild RunContext = "guild-text"
)

const defaultCooldown = 3 // seconds

// Command is an immutable handler definition. Definitions are struct
// literals handed to New from init(); after registration nothing mutates them.
type Command struct {
	Name             string
	Aliases          []string
	Description      string
	Tier             int
	Cooldown         float64 // seconds; 0 means the default of 3, negative means none
	Contexts         []RunContext
	Args             []Arg
	Hidden           bool
	NSFWOnly         bool
	DeleteInvocation bool

	Init     func() error
	Shutdown func() error
	Run      func(ctx *Context) error
}

// New validates a definition and applies defaults. Name, description, and a
// handler are mandatory; names and aliases are folded to lowercase.
func New(c Command) (*Command, error) {
	c.Name = strings.ToLower(strings.TrimSpace(c.Name))
	if c.Name == "" {
		return nil, fmt.Errorf("command: name is required")
	}
	if strings.ContainsAny(c.Name, " \t\n") {
		return nil, fmt.Errorf("command %q: name must be a single token", c.Name)
	}
	if c.Description == "" {
		return nil, fmt.Errorf("command %q: description is required", c.Name)
	}
	if c.Run == nil {
		return nil, fmt.Errorf("command %q: handler is required", c.Name)
	}
	for i, a := range c.Aliases {
		c.Aliases[i] = strings.ToLower(strings.TrimSpace(a))
		if c.Aliases[i] == "" {
			return nil, fmt.Errorf("command %q: empty alias", c.Name)
		}
	}
	for _, a := range c.Args {
		if a.Name == "" {
			return nil, fmt.Errorf("command %q: unnamed argument", c.Name)
		}
	}
	if c.Cooldown == 0 {
		c.Cooldown = defaultCooldown
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
	if len(c.Contexts) == 0 {
		c.Contexts = []RunContext{ContextGuild, ContextDM}
	}
	return &c, nil
}

// AllowedIn reports whether the command may run in the given context.
func (c *Command) AllowedIn(rc RunContext) bool {
	for _, allowed := range c.Contexts {
		if allowed == rc {
			return true
		}
	}
	return false
}

// Usage renders the command's invocation shape for help and validation
// feedback, e.g. "roll <sides:number>".
func (c *Command) Usage() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, a := range c.Args {
		fmt.Fprintf(&b, " <%s:%s>", a.Name, a.Kind)
	}
	return b.String()
}
