package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codekaffe/sensum/internal/commands"
	"github.com/codekaffe/sensum/internal/config"
	"github.com/codekaffe/sensum/internal/cooldown"
	"github.com/codekaffe/sensum/internal/discord"
	"github.com/codekaffe/sensum/internal/dispatch"
	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/listener"
	"github.com/codekaffe/sensum/internal/listeners"
	"github.com/codekaffe/sensum/internal/logger"
	"github.com/codekaffe/sensum/internal/permissions"
	"github.com/codekaffe/sensum/internal/storage"
	v "github.com/codekaffe/sensum/internal/version"

	"github.com/codekaffe/sensum/internal/command"
)

func main() {
	log.Printf("[INFO] Starting %s v%s...", v.AppName, v.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatalf("[ERR] Failed to open storage: %v", err)
	}
	defer store.Close()

	bus := events.NewBus()
	defer bus.Close()

	sink := logger.New(cfg.LogPath, cfg.LogLevel)
	defer sink.Close()
	go sink.Consume(bus.Subscribe(256))
	go discord.RunUsageRecorder(bus.Subscribe(256), store)

	registry := commands.Default()
	if err := registry.RunInits(); err != nil {
		log.Fatalf("[ERR] Command init failed: %v", err)
	}
	defer registry.RunShutdowns()

	perms, err := permissions.NewEvaluator(permissions.DefaultTiers(cfg.OwnerID), bus)
	if err != nil {
		log.Fatalf("[ERR] Invalid permission tiers: %v", err)
	}

	cooldowns := cooldown.NewStore(registry.CooldownLookup)
	defer cooldowns.Close()

	engine := listener.NewEngine(bus)
	for _, def := range listeners.All() {
		engine.MustRegister(def)
	}

	resolver := dispatch.NewResolver(registry, cfg.Prefix, store.GuildPrefix)
	pipeline := dispatch.NewPipeline(dispatch.Deps{
		Registry:  registry,
		Resolver:  resolver,
		Perms:     perms,
		Cooldowns: cooldowns,
		Bus:       bus,
		Services: command.Services{
			GuildPrefix:      store.GuildPrefix,
			SetGuildPrefix:   store.SetGuildPrefix,
			ClearGuildPrefix: store.ClearGuildPrefix,
			Ignore:           engine.Ignore,
			Unignore:         engine.Unignore,
			TierName:         perms.Name,
		},
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	err = discord.StartBot(ctx, discord.Deps{
		Token:     cfg.DiscordToken,
		Bus:       bus,
		Pipeline:  pipeline,
		Listeners: engine,
	})
	if err != nil {
		log.Fatalf("[ERR] Bot exited: %v", err)
	}

	log.Println("[INFO] Shutdown complete.")
}
