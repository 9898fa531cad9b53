package commands

import (
	"fmt"
	"time"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/version"
)

var startedAt time.Time

func init() {
	register(command.Command{
		Name:        "info",
		Aliases:     []string{"stats", "about"},
		Description: "Show bot version and uptime.",
		Init: func() error {
			startedAt = time.Now()
			return nil
		},
		Run: infoRun,
	})
}

func infoRun(ctx *command.Context) error {
	uptime := time.Since(startedAt).Round(time.Second)
	_, err := ctx.Reply(fmt.Sprintf(
		"%s v%s — up for %s. Your tier: `%s`.",
		version.AppName, version.AppVersion, uptime, ctx.Services.TierName(ctx.PermissionLevel),
	))
	return err
}
