package discord

import (
	"log"
	"time"

	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/storage"
)

// RunUsageRecorder drains command events off the bus and persists them to
// the guild's usage history. Run in its own goroutine; returns when the bus
// closes the subscription.
func RunUsageRecorder(ch <-chan events.Event, store *storage.Storage) {
	for evt := range ch {
		if evt.Kind != events.KindCommand {
			continue
		}
		guildID := evt.Fields["guild"]
		if guildID == "" {
			// DM invocations have no guild record to file under
			continue
		}
		err := store.AppendUsage(guildID, storage.UsageRecord{
			InvocationID: evt.Fields["invocation"],
			ChannelID:    evt.Fields["channel"],
			UserID:       evt.Fields["caller"],
			UserTag:      evt.Fields["caller_tag"],
			Command:      evt.Fields["command"],
			Args:         evt.Fields["args"],
			Datetime:     time.Now(),
		})
		if err != nil {
			log.Println("[WARN] Failed to record command usage:", err)
		}
	}
}
