package commands

import (
	"fmt"
	"runtime"

	"github.com/codekaffe/sensum/internal/command"
	"github.com/codekaffe/sensum/internal/permissions"
)

func init() {
	register(command.Command{
		Name:        "eval",
		Description: "Inspect the running process.",
		Tier:        permissions.LevelBotOwner,
		Cooldown:    -1,
		Run:         evalRun,
	})
}

func evalRun(ctx *command.Context) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	ctx.Bus.Debug("eval invoked", map[string]string{
		"invocation": ctx.InvocationID,
		"caller":     ctx.CallerID,
	})

	_, err := ctx.Reply(fmt.Sprintf(
		"goroutines: %d | heap: %.1f MiB | GC cycles: %d | go: %s",
		runtime.NumGoroutine(),
		float64(mem.HeapAlloc)/(1<<20),
		mem.NumGC,
		runtime.Version(),
	))
	return err
}
