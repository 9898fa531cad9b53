package listeners

import (
	"time"

	"github.com/codekaffe/sensum/internal/listener"
	"github.com/codekaffe/sensum/internal/match"
)

func init() {
	register(listener.Listener{
		Name:           "nitroscam",
		Category:       "moderation",
		Priority:       10,
		Cooldown:       30 * time.Second,
		GlobalCooldown: 30 * time.Second,
		MaxLength:      500,
		Patterns: []match.Pattern{
			match.P("free nitro"),
			match.P("free", "discord", "nitro"),
		},
		Run: func(ctx *listener.Context) error {
			ctx.Bus.Listener("possible scam link", map[string]string{
				"listener": "nitroscam",
				"guild":    ctx.Message.GuildID,
				"channel":  ctx.Message.ChannelID,
				"caller":   ctx.Message.AuthorID,
			})
			_, err := ctx.Reply("That looks like a scam. Mods have been pinged.")
			return err
		},
	})
}
