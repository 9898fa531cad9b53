package commands

import (
	"fmt"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/permissions"
)

func init() {
	register(command.Command{
		Name:        "prefix",
		Description: "Set or clear this server's command prefix.",
		Tier:        permissions.LevelAdmin,
		Contexts:    []command.RunContext{command.ContextGuild},
		Args: []command.Arg{
			{Name: "value", Kind: command.KindString},
		},
		Run: prefixRun,
	})
}

func prefixRun(ctx *command.Context) error {
	value, _ := ctx.String("value")

	if value == "clear" || value == "reset" {
		if err := ctx.Services.ClearGuildPrefix(ctx.Message.GuildID); err != nil {
			return fmt.Errorf("clearing prefix: %w", err)
		}
		_, err := ctx.Reply("Prefix override cleared.")
		return err
	}

	if len(value) > 5 {
		_, err := ctx.Reply("Keep the prefix under 6 characters.")
		return err
	}
	if err := ctx.Services.SetGuildPrefix(ctx.Message.GuildID, value); err != nil {
		return fmt.Errorf("setting prefix: %w", err)
	}
	_, err := ctx.Reply(fmt.Sprintf("Prefix for this server is now `%s`.", value))
	return err
}
