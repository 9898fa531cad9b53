package commands

import (
	"fmt"
	"strings"

	"github.com/codekaffe/sensum/internal/command"
)

func init() {
	register(command.Command{
		Name:        "help",
		Aliases:     []string{"commands"},
		Description: "List available commands.",
		Run:         helpRun,
	})
}

func helpRun(ctx *command.Context) error {
	var b strings.Builder
	b.WriteString("**Commands**\n")
	for _, c := range ctx.Registry.All() {
		if c.Hidden || c.Tier > ctx.PermissionLevel {
			continue
		}
		fmt.Fprintf(&b, "`%s%s` — %s", ctx.Prefix, c.Usage(), c.Description)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, " (aka %s)", strings.Join(c.Aliases, ", "))
		}
		b.WriteString("\n")
	}
	_, err := ctx.Reply(strings.TrimRight(b.String(), "\n"))
	return err
}
