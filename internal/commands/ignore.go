package commands

import (
	"fmt"
	"time"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/permissions"
)

func init() {
	register(command.Command{
		Name:        "ignore",
		Description: "Mute listeners in this channel or the whole server.",
		Tier:        permissions.LevelMod,
		Contexts:    []command.RunContext{command.ContextGuild},
		Args: []command.Arg{
			{Name: "scope", Kind: command.KindString},
			{Name: "minutes", Kind: command.KindNumber},
		},
		Run: ignoreRun,
	})

	register(command.Command{
		Name:        "unignore",
		Description: "Lift a listener mute from this channel or the whole server.",
		Tier:        permissions.LevelMod,
		Contexts:    []command.RunContext{command.ContextGuild},
		Args: []command.Arg{
			{Name: "scope", Kind: command.KindString},
		},
		Run: unignoreRun,
	})
}

func scopeID(ctx *command.Context, scope string) (string, bool) {
	switch scope {
	case "channel", "here":
		return ctx.Message.ChannelID, true
	case "guild", "server":
		return ctx.Message.GuildID, true
	}
	return "", false
}

func ignoreRun(ctx *command.Context) error {
	scope, _ := ctx.String("scope")
	minutes, _ := ctx.Number("minutes")

	id, ok := scopeID(ctx, scope)
	if !ok {
		_, err := ctx.Reply("Scope must be `channel` or `server`.")
		return err
	}

	var d time.Duration
	if minutes > 0 {
		d = time.Duration(minutes * float64(time.Minute))
	}
	ctx.Services.Ignore(id, d)
	if minutes <= 0 {
		_, err := ctx.Reply(fmt.Sprintf("Listeners muted for this %s until lifted.", scope))
		return err
	}
	_, err := ctx.Reply(fmt.Sprintf("Listeners muted for this %s for %.0f minute(s).", scope, minutes))
	return err
}

func unignoreRun(ctx *command.Context) error {
	scope, _ := ctx.String("scope")

	id, ok := scopeID(ctx, scope)
	if !ok {
		_, err := ctx.Reply("Scope must be `channel` or `server`.")
		return err
	}

	ctx.Services.Unignore(id)
	_, err := ctx.Reply(fmt.Sprintf("Listeners unmuted for this %s.", scope))
	return err
}
