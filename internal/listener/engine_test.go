package listener

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/match"
	"github.com/codekaffe/sensum/internal/message"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func newHitCounter() *hitCounter {
	return &hitCounter{hits: make(map[string]int)}
}

func (h *hitCounter) run(name string) func(*Context) error {
	return func(*Context) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.hits[name]++
		return nil
	}
}

func (h *hitCounter) count(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[name]
}

func guildMsg(author, content string) *message.Inbound {
	return &message.Inbound{
		ID:        "m1",
		AuthorID:  author,
		Content:   content,
		GuildID:   "g1",
		ChannelID: "c1",
	}
}

func TestRegisterValidation(t *testing.T) {
	e := NewEngine(nil)
	cases := []Listener{
		{Category: "c", Patterns: []match.Pattern{match.P("x")}, Run: func(*Context) error { return nil }},
		{Name: "n", Patterns: []match.Pattern{match.P("x")}, Run: func(*Context) error { return nil }},
		{Name: "n", Category: "c", Run: func(*Context) error { return nil }},
		{Name: "n", Category: "c", Patterns: []match.Pattern{match.P("x")}},
		{Name: "n", Category: "c", Patterns: []match.Pattern{{}}, Run: func(*Context) error { return nil }},
	}
	for i, def := range cases {
		if err := e.Register(def); err == nil {
			t.Fatalf("case %d: expected a validation error", i)
		}
	}
}

func TestPriorityShortCircuitsCategory(t *testing.T) {
	hits := newHitCounter()
	e := NewEngine(nil)
	e.MustRegister(Listener{
		Name: "late", Category: "chat", Priority: 50,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("late"),
	})
	e.MustRegister(Listener{
		Name: "early", Category: "chat", Priority: 10,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("early"),
	})

	e.Evaluate(guildMsg("u1", "hello there"))

	if hits.count("early") != 1 {
		t.Fatalf("expected the lower-priority listener to win, early=%d", hits.count("early"))
	}
	if hits.count("late") != 0 {
		t.Fatalf("category chain must stop at the first match, late=%d", hits.count("late"))
	}
}

func TestRegistrationOrderBreaksPriorityTies(t *testing.T) {
	hits := newHitCounter()
	e := NewEngine(nil)
	e.MustRegister(Listener{
		Name: "first", Category: "chat", Priority: 10,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("first"),
	})
	e.MustRegister(Listener{
		Name: "second", Category: "chat", Priority: 10,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("second"),
	})

	e.Evaluate(guildMsg("u1", "hello"))

	if hits.count("first") != 1 || hits.count("second") != 0 {
		t.Fatalf("ties must fall to registration order, first=%d second=%d",
			hits.count("first"), hits.count("second"))
	}
}

func TestCategoriesEvaluateIndependently(t *testing.T) {
	hits := newHitCounter()
	e := NewEngine(nil)
	e.MustRegister(Listener{
		Name: "greet", Category: "chat",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("greet"),
	})
	e.MustRegister(Listener{
		Name: "watch", Category: "moderation",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("watch"),
	})

	e.Evaluate(guildMsg("u1", "hello"))

	if hits.count("greet") != 1 || hits.count("watch") != 1 {
		t.Fatalf("one match per category, greet=%d watch=%d",
			hits.count("greet"), hits.count("watch"))
	}
}

func TestListenerFailureIsIsolated(t *testing.T) {
	hits := newHitCounter()
	bus := events.NewBus()
	ch := bus.Subscribe(16)
	e := NewEngine(bus)
	e.MustRegister(Listener{
		Name: "panics", Category: "chat",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      func(*Context) error { panic("boom") },
	})
	e.MustRegister(Listener{
		Name: "fails", Category: "moderation",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      func(*Context) error { return errors.New("nope") },
	})
	e.MustRegister(Listener{
		Name: "healthy", Category: "fun",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("healthy"),
	})

	e.Evaluate(guildMsg("u1", "hello"))

	if hits.count("healthy") != 1 {
		t.Fatal("a failing category must not suppress healthy ones")
	}
	var errCount int
	for {
		select {
		case evt := <-ch:
			if evt.Kind != events.KindError {
				continue
			}
			errCount++
			if evt.Fields["category"] == "" || evt.Fields["listener"] == "" || evt.Fields["guild"] != "g1" {
				t.Fatalf("error event missing origin fields: %+v", evt.Fields)
			}
		default:
			if errCount != 2 {
				t.Fatalf("expected two isolated error events, got %d", errCount)
			}
			return
		}
	}
}

func TestPerCallerCooldown(t *testing.T) {
	clock := newFakeClock()
	hits := newHitCounter()
	e := NewEngine(nil)
	e.now = clock.now
	e.MustRegister(Listener{
		Name: "greet", Category: "chat", Cooldown: time.Minute,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("greet"),
	})

	e.Evaluate(guildMsg("u1", "hello"))
	e.Evaluate(guildMsg("u1", "hello"))
	if hits.count("greet") != 1 {
		t.Fatalf("caller must be throttled inside the window, got %d", hits.count("greet"))
	}

	// another caller has an independent clock
	e.Evaluate(guildMsg("u2", "hello"))
	if hits.count("greet") != 2 {
		t.Fatalf("cooldown must be per caller, got %d", hits.count("greet"))
	}

	clock.advance(time.Minute + time.Second)
	e.Evaluate(guildMsg("u1", "hello"))
	if hits.count("greet") != 3 {
		t.Fatalf("window expiry must readmit the caller, got %d", hits.count("greet"))
	}
}

func TestGlobalCooldownSpansCallers(t *testing.T) {
	clock := newFakeClock()
	hits := newHitCounter()
	e := NewEngine(nil)
	e.now = clock.now
	e.MustRegister(Listener{
		Name: "scam", Category: "moderation",
		Cooldown: time.Minute, GlobalCooldown: time.Minute,
		Patterns: []match.Pattern{match.P("free nitro")},
		Run:      hits.run("scam"),
	})

	e.Evaluate(guildMsg("u1", "free nitro for all"))
	e.Evaluate(guildMsg("u2", "free nitro for all"))
	if hits.count("scam") != 1 {
		t.Fatalf("global cooldown must throttle the whole guild, got %d", hits.count("scam"))
	}
}

func TestCooldownSkipsToNextListener(t *testing.T) {
	clock := newFakeClock()
	hits := newHitCounter()
	e := NewEngine(nil)
	e.now = clock.now
	e.MustRegister(Listener{
		Name: "early", Category: "chat", Priority: 10, Cooldown: time.Hour,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("early"),
	})
	e.MustRegister(Listener{
		Name: "late", Category: "chat", Priority: 50, Cooldown: time.Hour,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("late"),
	})

	e.Evaluate(guildMsg("u1", "hello"))
	e.Evaluate(guildMsg("u1", "hello"))

	if hits.count("early") != 1 || hits.count("late") != 1 {
		t.Fatalf("a cooled-down listener must yield the chain, early=%d late=%d",
			hits.count("early"), hits.count("late"))
	}
}

func TestMaxLengthSkipsListener(t *testing.T) {
	hits := newHitCounter()
	e := NewEngine(nil)
	e.MustRegister(Listener{
		Name: "short", Category: "chat", MaxLength: 10,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("short"),
	})

	e.Evaluate(guildMsg("u1", "hello this message is far too long"))
	if hits.count("short") != 0 {
		t.Fatal("oversized messages must be skipped")
	}

	e.Evaluate(guildMsg("u1", "hello"))
	if hits.count("short") != 1 {
		t.Fatal("messages within the cap must be evaluated")
	}
}

func TestBotAndDirectMessagesAreSkipped(t *testing.T) {
	hits := newHitCounter()
	e := NewEngine(nil)
	e.MustRegister(Listener{
		Name: "greet", Category: "chat",
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("greet"),
	})

	bot := guildMsg("u1", "hello")
	bot.AuthorBot = true
	e.Evaluate(bot)

	dm := guildMsg("u1", "hello")
	dm.GuildID = ""
	e.Evaluate(dm)

	if hits.count("greet") != 0 {
		t.Fatalf("bot and DM traffic must never reach listeners, got %d", hits.count("greet"))
	}
}

func TestIgnoreWindows(t *testing.T) {
	clock := newFakeClock()
	hits := newHitCounter()
	e := NewEngine(nil)
	e.now = clock.now
	e.MustRegister(Listener{
		Name: "greet", Category: "chat", Cooldown: time.Nanosecond,
		Patterns: []match.Pattern{match.P("hello")},
		Run:      hits.run("greet"),
	})

	// indefinite window on the channel
	e.Ignore("c1", 0)
	e.Evaluate(guildMsg("u1", "hello"))
	if hits.count("greet") != 0 {
		t.Fatal("ignored channel must suppress evaluation")
	}

	e.Unignore("c1")
	clock.advance(time.Second)
	e.Evaluate(guildMsg("u1", "hello"))
	if hits.count("greet") != 1 {
		t.Fatal("lifting the window must restore evaluation")
	}

	// timed window on the guild expires by the fake clock
	e.Ignore("g1", time.Minute)
	if !e.Ignored("g1") {
		t.Fatal("timed window must be active immediately")
	}
	clock.advance(2 * time.Minute)
	if e.Ignored("g1") {
		t.Fatal("timed window must lapse after its duration")
	}

	// re-ignoring restarts the window from now
	e.Ignore("g1", time.Minute)
	clock.advance(45 * time.Second)
	e.Ignore("g1", time.Minute)
	clock.advance(30 * time.Second)
	if !e.Ignored("g1") {
		t.Fatal("re-ignoring must restart the window")
	}
}

func TestContextValuesAreShared(t *testing.T) {
	e := NewEngine(nil)
	var got any
	var ok bool
	var mu sync.Mutex
	e.MustRegister(Listener{
		Name: "writer", Category: "a",
		Patterns: []match.Pattern{match.P("hello")},
		Run: func(ctx *Context) error {
			ctx.Set("seen", "yes")
			return nil
		},
	})
	e.MustRegister(Listener{
		Name: "reader", Category: "b", Priority: 200,
		Patterns: []match.Pattern{match.P("hello")},
		Run: func(ctx *Context) error {
			mu.Lock()
			defer mu.Unlock()
			got, ok = ctx.Get("seen")
			return nil
		},
	})

	// categories race on the shared context; retry until the writer went first,
	// with a fresh caller each round so cooldowns never block the rerun
	for i := 0; i < 100; i++ {
		e.Evaluate(guildMsg(fmt.Sprintf("u%d", i), "hello"))
		mu.Lock()
		done := ok && got == "yes"
		mu.Unlock()
		if done {
			return
		}
	}
	t.Fatal("listeners never observed a shared context value")
}
