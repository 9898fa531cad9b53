package listeners

import (
	"fmt"
	"time"

	"github.com/codekaffe/sensum/internal/listener"
	"github.com/codekaffe/sensum/internal/match"
)

func init() {
	register(listener.Listener{
		Name:     "greeting",
		Category: "conversational",
		Priority: 20,
		Cooldown: time.Minute,
		Patterns: []match.Pattern{
			match.P("hello"),
			match.P("hi"),
			match.P("hey"),
		},
		Run: func(ctx *listener.Context) error {
			_, err := ctx.Reply(fmt.Sprintf("Hey, %s!", ctx.Message.DisplayName()))
			return err
		},
	})

	register(listener.Listener{
		Name:     "checkin",
		Category: "conversational",
		Priority: 50,
		Cooldown: 5 * time.Minute,
		Patterns: []match.Pattern{
			match.P("how", "are", "you"),
			match.P("intent", "know"),
		},
		Run: func(ctx *listener.Context) error {
			_, err := ctx.Reply("All gates green on my end. How about you?")
			return err
		},
	})
}
