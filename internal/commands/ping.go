package commands

import "github.com/codekaffe/sensum/internal/command"

func init() {
	register(command.Command{
		Name:        "ping",
		Description: "Check that the bot is alive.",
		Run:         pingRun,
	})
}

func pingRun(ctx *command.Context) error {
	_, err := ctx.Reply("Pong!")
	return err
}
