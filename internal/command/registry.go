package command

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds commands by canonical name with aliases mapped many-to-one
// onto names. Populated once at load time, read-only afterwards.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register validates and files a definition. Name and alias collisions are
// load-time errors.
func (r *Registry) Register(def Command) error {
	c, err := New(def)
	if err != nil {
		return err
	}
	if _, taken := r.commands[c.Name]; taken {
		return fmt.Errorf("command %q already registered", c.Name)
	}
	if owner, taken := r.aliases[c.Name]; taken {
		return fmt.Errorf("command %q collides with an alias of %q", c.Name, owner)
	}
	for _, a := range c.Aliases {
		if _, taken := r.commands[a]; taken {
			return fmt.Errorf("alias %q of %q collides with a command name", a, c.Name)
		}
		if owner, taken := r.aliases[a]; taken {
			return fmt.Errorf("alias %q of %q already belongs to %q", a, c.Name, owner)
		}
	}
	r.commands[c.Name] = c
	for _, a := range c.Aliases {
		r.aliases[a] = c.Name
	}
	return nil
}

// MustRegister is Register for static definitions loaded from init().
func (r *Registry) MustRegister(def Command) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Resolve looks the token up as a name first, then as an alias. viaAlias
// reports which lookup hit.
func (r *Registry) Resolve(token string) (c *Command, viaAlias bool, ok bool) {
	token = strings.ToLower(token)
	if c, ok := r.commands[token]; ok {
		return c, false, true
	}
	if name, ok := r.aliases[token]; ok {
		return r.commands[name], true, true
	}
	return nil, false, false
}

// Get returns a command by canonical name only.
func (r *Registry) Get(name string) (*Command, bool) {
	c, ok := r.commands[strings.ToLower(name)]
	return c, ok
}

// All returns every registered command sorted by name.
func (r *Registry) All() []*Command {
	list := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// CooldownLookup adapts the registry to the cooldown store: it reports the
// live cooldown window of a command, so definition changes apply on the next
// check.
func (r *Registry) CooldownLookup(name string) (float64, bool) {
	c, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return 0, false
	}
	return c.Cooldown, true
}

// RunInits calls every command's Init hook; the first failure aborts startup.
func (r *Registry) RunInits() error {
	for _, c := range r.All() {
		if c.Init == nil {
			continue
		}
		if err := c.Init(); err != nil {
			return fmt.Errorf("init of command %q: %w", c.Name, err)
		}
	}
	return nil
}

// RunShutdowns calls every command's Shutdown hook; shutdown is best effort.
func (r *Registry) RunShutdowns() {
	for _, c := range r.All() {
		if c.Shutdown != nil {
			_ = c.Shutdown()
		}
	}
}
