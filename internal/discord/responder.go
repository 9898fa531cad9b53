package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/codekaffe/sensum/internal/message"
	"github.com/codekaffe/sensum/pkg/throttle"
)

// Responder implements message.Responder on a live session. Sends and edits
// go through the throttle so feedback bursts stay under platform limits;
// deletes are cheap and skip it.
type Responder struct {
	dg      *discordgo.Session
	limiter *throttle.Limiter
}

func NewResponder(dg *discordgo.Session, limiter *throttle.Limiter) *Responder {
	return &Responder{dg: dg, limiter: limiter}
}

func (r *Responder) Send(channelID, content string) (*message.Handle, error) {
	_ = r.limiter.Wait(context.Background())
	sent, err := r.dg.ChannelMessageSend(channelID, content)
	if err != nil {
		r.limiter.Limited()
		return nil, err
	}
	r.limiter.Success()
	return &message.Handle{ID: sent.ID, ChannelID: sent.ChannelID}, nil
}

func (r *Responder) Edit(channelID, messageID, content string) (*message.Handle, error) {
	_ = r.limiter.Wait(context.Background())
	edited, err := r.dg.ChannelMessageEdit(channelID, messageID, content)
	if err != nil {
		r.limiter.Limited()
		return nil, err
	}
	r.limiter.Success()
	return &message.Handle{ID: edited.ID, ChannelID: edited.ChannelID}, nil
}

func (r *Responder) Delete(channelID, messageID string) error {
	return r.dg.ChannelMessageDelete(channelID, messageID)
}

func (r *Responder) FetchMember(guildID, userID string) (*message.Member, error) {
	m, err := r.dg.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	return memberFlags(r.dg, guildID, userID, m), nil
}
