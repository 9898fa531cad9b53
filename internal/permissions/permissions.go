package permissions

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/message"
)

// Tier is one permission level: a rank, a display name, and a pure predicate
// over the message and its (possibly hydrated) member.
type Tier struct {
	Level int
	Name  string
	Check func(m *message.Inbound) bool
}

// Evaluator ranks tiers highest-to-lowest and answers "what level is this
// caller". Built once at startup, immutable afterwards.
type Evaluator struct {
	tiers []Tier
	names map[int]string
}

// NewEvaluator sorts tiers descending by level and rejects duplicate levels.
// A missing level-0 catch-all is tolerated (Evaluate still bottoms out at 0)
// but reported as a warn event.
func NewEvaluator(tiers []Tier, bus *events.Bus) (*Evaluator, error) {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})

	names := make(map[int]string, len(sorted))
	hasFloor := false
	for _, t := range sorted {
		if _, dup := names[t.Level]; dup {
			return nil, fmt.Errorf("duplicate permission level %d", t.Level)
		}
		names[t.Level] = t.Name
		if t.Level == 0 {
			hasFloor = true
		}
	}
	if !hasFloor && bus != nil {
		bus.Warn("permission tier list has no level-0 catch-all", nil, nil)
	}

	return &Evaluator{tiers: sorted, names: names}, nil
}

// Evaluate returns the level of the highest tier whose predicate matches.
// Every caller resolves to some level; with no match the floor is 0.
func (e *Evaluator) Evaluate(m *message.Inbound) int {
	for _, t := range e.tiers {
		if t.Check != nil && t.Check(m) {
			return t.Level
		}
	}
	return 0
}

// Name returns the display name for a level, or the level itself when the
// configuration never declared it.
func (e *Evaluator) Name(level int) string {
	if name, ok := e.names[level]; ok {
		return name
	}
	return strconv.Itoa(level)
}

// Known reports whether a level was declared by the tier configuration.
func (e *Evaluator) Known(level int) bool {
	_, ok := e.names[level]
	return ok
}

// Default tier levels.
const (
	LevelUser       = 0
	LevelMod        = 3
	LevelAdmin      = 6
	LevelGuildOwner = 8
	LevelBotOwner   = 10
)

// DefaultTiers is the stock ladder: everyone is at least USER, capability
// flags on the hydrated member raise the rank, and the configured owner ID
// tops out at BOT_OWNER.
func DefaultTiers(ownerID string) []Tier {
	return []Tier{
		{Level: LevelUser, Name: "USER", Check: func(m *message.Inbound) bool {
			return true
		}},
		{Level: LevelMod, Name: "MOD", Check: func(m *message.Inbound) bool {
			return m.Member != nil && m.Member.CanManageMessages
		}},
		{Level: LevelAdmin, Name: "ADMIN", Check: func(m *message.Inbound) bool {
			return m.Member != nil && m.Member.CanManageGuild
		}},
		{Level: LevelGuildOwner, Name: "GUILD_OWNER", Check: func(m *message.Inbound) bool {
			return m.Member != nil && m.Member.GuildOwner
		}},
		{Level: LevelBotOwner, Name: "BOT_OWNER", Check: func(m *message.Inbound) bool {
			return ownerID != "" && m.AuthorID == ownerID
		}},
	}
}
