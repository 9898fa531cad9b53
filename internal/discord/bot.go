package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codekaffe/sensum/internal/dispatch"
	"github.com/codekaffe/sensum/internal/events"
	"github.com/codekaffe/sensum/internal/listener"
	"github.com/codekaffe/sensum/internal/message"
	"github.com/codekaffe/sensum/pkg/throttle"
)

// Deps is everything the gateway adapter needs from the rest of the process.
type Deps struct {
	Token     string
	Bus       *events.Bus
	Pipeline  *dispatch.Pipeline
	Listeners *listener.Engine
}

// Bot bridges the Discord gateway to the dispatch core: it turns gateway
// events into platform-neutral inbound messages and fans each one out to the
// command pipeline and the listener engine.
type Bot struct {
	dg        *discordgo.Session
	deps      Deps
	responder *Responder
}

// StartBot opens the gateway session and blocks until ctx is done.
func StartBot(ctx context.Context, deps Deps) error {
	dg, err := discordgo.New("Bot " + deps.Token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:        dg,
		deps:      deps,
		responder: NewResponder(dg, throttle.New(5, 1, 20)),
	}

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Closing gateway...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s, %d guild(s)", r.User.String(), len(r.Guilds))
}

// onMessageCreate runs the two per-message pipelines. They are independent:
// listener evaluation is not gated by command resolution.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	in := b.inbound(s, m.Message)
	go b.deps.Pipeline.Handle(in)
	go b.deps.Listeners.Evaluate(in)
}

// onMessageUpdate re-dispatches edited messages through the same pipelines.
func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	// embed-resolution edits carry no author
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Content == "" {
		return
	}
	in := b.inbound(s, m.Message)
	go b.deps.Pipeline.Handle(in)
	go b.deps.Listeners.Evaluate(in)
}

// inbound maps a gateway message onto the core's view of it, hydrating the
// channel kind and NSFW flag from state with a REST fallback.
func (b *Bot) inbound(s *discordgo.Session, m *discordgo.Message) *message.Inbound {
	in := &message.Inbound{
		ID:        m.ID,
		AuthorID:  m.Author.ID,
		AuthorTag: m.Author.String(),
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Kind:      message.ChannelGuildText,
		Timestamp: m.Timestamp,
		Responder: b.responder,
	}
	if m.GuildID == "" {
		in.Kind = message.ChannelDirect
	}
	if m.Member != nil && m.Author != nil {
		in.Member = memberFlags(s, m.GuildID, m.Author.ID, m.Member)
	}

	channel, err := s.State.Channel(m.ChannelID)
	if err != nil {
		channel, err = s.Channel(m.ChannelID)
	}
	if err == nil && channel != nil {
		in.NSFW = channel.NSFW
		if channel.Type == discordgo.ChannelTypeDM {
			in.Kind = message.ChannelDirect
		}
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	return in
}

// memberFlags maps a guild member onto the capability flags tier predicates use.
func memberFlags(s *discordgo.Session, guildID, userID string, m *discordgo.Member) *message.Member {
	out := &message.Member{
		Nickname: m.Nick,
		Roles:    m.Roles,
	}

	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = s.Guild(guildID)
	}
	if guild != nil && guild.OwnerID == userID {
		out.GuildOwner = true
	}

	for _, roleID := range m.Roles {
		role, _ := s.State.Role(guildID, roleID)
		if role == nil {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			out.CanManageGuild = true
			out.CanManageMessages = true
		}
		if role.Permissions&discordgo.PermissionManageGuild != 0 {
			out.CanManageGuild = true
		}
		if role.Permissions&discordgo.PermissionManageMessages != 0 {
			out.CanManageMessages = true
		}
	}
	if out.GuildOwner {
		out.CanManageGuild = true
		out.CanManageMessages = true
	}
	return out
}
