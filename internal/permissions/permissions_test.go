package permissions_test

import (
	"testing"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/message"
	"github.com/codekaffe/sensum/internal/permissions"
)

func guildMsg(authorID string, member *message.Member) *message.Inbound {
	return &message.Inbound{
		AuthorID:  authorID,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    member,
	}
}

func TestEvaluateFirstMatchHighestWins(t *testing.T) {
	eval, err := permissions.NewEvaluator(permissions.DefaultTiers("owner"), events.NewBus())
	if err != nil {
		t.Fatalf("NewEvaluator: %+v", err)
	}

	m := guildMsg("owner", &message.Member{CanManageMessages: true})
	if got := eval.Evaluate(m); got != permissions.LevelBotOwner {
		t.Fatalf("expected owner level %d, got %d", permissions.LevelBotOwner, got)
	}

	m = guildMsg("u1", &message.Member{CanManageMessages: true})
	if got := eval.Evaluate(m); got != permissions.LevelMod {
		t.Fatalf("expected mod level %d, got %d", permissions.LevelMod, got)
	}

	m = guildMsg("u2", nil)
	if got := eval.Evaluate(m); got != permissions.LevelUser {
		t.Fatalf("expected user level 0, got %d", got)
	}
}

func TestEvaluateTotalWithoutFloorTier(t *testing.T) {
	tiers := []permissions.Tier{
		{Level: 5, Name: "ELEVATED", Check: func(m *message.Inbound) bool { return false }},
	}
	eval, err := permissions.NewEvaluator(tiers, events.NewBus())
	if err != nil {
		t.Fatalf("NewEvaluator: %+v", err)
	}
	if got := eval.Evaluate(guildMsg("u1", nil)); got != 0 {
		t.Fatalf("expected fallback level 0, got %d", got)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	eval, err := permissions.NewEvaluator(permissions.DefaultTiers(""), events.NewBus())
	if err != nil {
		t.Fatalf("NewEvaluator: %+v", err)
	}
	m := guildMsg("u1", &message.Member{GuildOwner: true})
	first := eval.Evaluate(m)
	for i := 0; i < 10; i++ {
		if got := eval.Evaluate(m); got != first {
			t.Fatalf("evaluation changed between calls: %d then %d", first, got)
		}
	}
}

func TestDuplicateLevelsRejected(t *testing.T) {
	tiers := []permissions.Tier{
		{Level: 0, Name: "USER", Check: func(*message.Inbound) bool { return true }},
		{Level: 0, Name: "ALSO_USER", Check: func(*message.Inbound) bool { return true }},
	}
	if _, err := permissions.NewEvaluator(tiers, events.NewBus()); err == nil {
		t.Fatal("expected duplicate level error")
	}
}

func TestName(t *testing.T) {
	eval, err := permissions.NewEvaluator(permissions.DefaultTiers(""), events.NewBus())
	if err != nil {
		t.Fatalf("NewEvaluator: %+v", err)
	}
	if got := eval.Name(permissions.LevelAdmin); got != "ADMIN" {
		t.Fatalf("expected ADMIN, got %q", got)
	}
	if got := eval.Name(42); got != "42" {
		t.Fatalf("expected numeric fallback, got %q", got)
	}
	if eval.Known(42) {
		t.Fatal("level 42 should be unknown")
	}
}
