package listener

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/message"
)

// Engine holds registered listeners grouped by category and evaluates them
// against incoming guild messages. Categories are isolated fault domains:
// each one walks its priority chain independently, so a failing listener
// family cannot suppress unrelated ones.
type Engine struct {
	mu         sync.Mutex
	categories map[string][]*Listener
	order      []string // category names in first-registration order
	seq        int

	callerClocks map[string]time.Time // listener+caller -> cooldown expiry
	globalClocks map[string]time.Time // listener+guild -> cooldown expiry
	ignores      map[string]*ignoreWindow

	bus *events.Bus
	now func() time.Time
}

type ignoreWindow struct {
	start time.Time
	dur   time.Duration // 0 = until explicitly lifted
	timer *time.Timer
}

func NewEngine(bus *events.Bus) *Engine {
	return &Engine{
		categories:   make(map[string][]*Listener),
		callerClocks: make(map[string]time.Time),
		globalClocks: make(map[string]time.Time),
		ignores:      make(map[string]*ignoreWindow),
		bus:          bus,
		now:          time.Now,
	}
}

// Register validates a listener and files it into its category, keeping the
// category sorted ascending by priority with registration order breaking ties.
func (e *Engine) Register(def Listener) error {
	l, err := New(def)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	l.seq = e.seq
	e.seq++

	if _, seen := e.categories[l.Category]; !seen {
		e.order = append(e.order, l.Category)
	}
	group := append(e.categories[l.Category], l)
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Priority != group[j].Priority {
			return group[i].Priority < group[j].Priority
		}
		return group[i].seq < group[j].seq
	})
	e.categories[l.Category] = group
	return nil
}

// MustRegister is Register for static listener definitions loaded at startup.
func (e *Engine) MustRegister(def Listener) {
	if err := e.Register(def); err != nil {
		panic(err)
	}
}

// Categories returns category names in first-registration order.
func (e *Engine) Categories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Evaluate runs the message through every category concurrently and returns
// once all of them finish. Only guild messages from non-bot authors are
// considered, and an active ignore window on the channel or guild suppresses
// evaluation entirely.
func (e *Engine) Evaluate(m *message.Inbound) {
	if m == nil || m.AuthorBot || m.GuildID == "" {
		return
	}
	if e.Ignored(m.ChannelID, m.GuildID) {
		return
	}

	e.mu.Lock()
	groups := make([][]*Listener, 0, len(e.order))
	for _, cat := range e.order {
		groups = append(groups, e.categories[cat])
	}
	e.mu.Unlock()

	ctx := newContext(m, e.bus)

	var wg sync.WaitGroup
	for _, group := range groups {
		wg.Add(1)
		go func(group []*Listener) {
			defer wg.Done()
			e.evaluateCategory(group, m, ctx)
		}(group)
	}
	wg.Wait()
}

// evaluateCategory walks one category's priority chain; the first listener
// that matches wins the category.
func (e *Engine) evaluateCategory(group []*Listener, m *message.Inbound, ctx *Context) {
	for _, l := range group {
		if len(m.Content) > l.MaxLength {
			continue
		}
		if e.onCooldown(l, m) {
			continue
		}
		if !l.matches(m.Content) {
			continue
		}

		e.setClocks(l, m)
		e.invoke(l, m, ctx)
		return
	}
}

func (e *Engine) onCooldown(l *Listener, m *message.Inbound) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if expiry, ok := e.callerClocks[l.Name+"\x00"+m.AuthorID]; ok && now.Before(expiry) {
		return true
	}
	if l.GlobalCooldown > 0 {
		if expiry, ok := e.globalClocks[l.Name+"\x00"+m.GuildID]; ok && now.Before(expiry) {
			return true
		}
	}
	return false
}

func (e *Engine) setClocks(l *Listener, m *message.Inbound) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	e.callerClocks[l.Name+"\x00"+m.AuthorID] = now.Add(l.Cooldown)
	if l.GlobalCooldown > 0 {
		e.globalClocks[l.Name+"\x00"+m.GuildID] = now.Add(l.GlobalCooldown)
	}
}

func (e *Engine) invoke(l *Listener, m *message.Inbound, ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			e.report(l, m, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := l.Run(ctx); err != nil {
		e.report(l, m, err)
	}
}

func (e *Engine) report(l *Listener, m *message.Inbound, err error) {
	if e.bus == nil {
		return
	}
	e.bus.Error("listener failed", err, map[string]string{
		"listener": l.Name,
		"category": l.Category,
		"guild":    m.GuildID,
		"channel":  m.ChannelID,
		"caller":   m.AuthorID,
	})
}

// Ignore suppresses listener evaluation for a channel or guild scope.
// A zero duration means until explicitly lifted; re-ignoring a scope cancels
// the prior pending expiry and restarts the window.
func (e *Engine) Ignore(scopeID string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := e.ignores[scopeID]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	w := &ignoreWindow{start: e.now(), dur: d}
	if d > 0 {
		w.timer = time.AfterFunc(d, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if cur, ok := e.ignores[scopeID]; ok && cur == w {
				delete(e.ignores, scopeID)
			}
		})
	}
	e.ignores[scopeID] = w
}

// Unignore lifts an ignore window early. Lifting an absent window is a no-op.
func (e *Engine) Unignore(scopeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w, ok := e.ignores[scopeID]; ok {
		if w.timer != nil {
			w.timer.Stop()
		}
		delete(e.ignores, scopeID)
	}
}

// Ignored reports whether any of the given scope IDs is under an active window.
func (e *Engine) Ignored(scopeIDs ...string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for _, id := range scopeIDs {
		w, ok := e.ignores[id]
		if !ok {
			continue
		}
		if w.dur == 0 || now.Before(w.start.Add(w.dur)) {
			return true
		}
	}
	return false
}
