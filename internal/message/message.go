// Package message defines the platform-neutral view of an inbound chat
// message. The dispatch core and listener engine work entirely on these
// values; the gateway adapter is the only place that knows the wire types.
package message

import "time"

type ChannelKind int

const (
	ChannelGuildText ChannelKind = iota
	ChannelDirect
)

// Member is the hydrated guild-member view of the author. The adapter maps
// platform permission bits onto the capability flags the tier predicates use.
type Member struct {
	Nickname          string
	Roles             []string
	GuildOwner        bool
	CanManageGuild    bool
	CanManageMessages bool
}

// Inbound is one message as seen by the dispatch core. Member is nil until
// hydrated; the pipeline fetches it on demand for guild messages.
type Inbound struct {
	ID        string
	AuthorID  string
	AuthorTag string
	AuthorBot bool
	Content   string
	GuildID   string // empty for direct messages
	ChannelID string
	Kind      ChannelKind
	NSFW      bool
	Member    *Member
	Timestamp time.Time

	Responder Responder
}

func (m *Inbound) IsDM() bool {
	return m.GuildID == ""
}

// DisplayName prefers the member nickname over the account tag.
func (m *Inbound) DisplayName() string {
	if m.Member != nil && m.Member.Nickname != "" {
		return m.Member.Nickname
	}
	return m.AuthorTag
}

// FetchMember hydrates Member through the responder. Safe to call twice;
// the second call is a no-op.
func (m *Inbound) FetchMember() error {
	if m.Member != nil || m.IsDM() || m.Responder == nil {
		return nil
	}
	member, err := m.Responder.FetchMember(m.GuildID, m.AuthorID)
	if err != nil {
		return err
	}
	m.Member = member
	return nil
}

// Handle identifies a message the bot sent, enough to edit or delete it later.
type Handle struct {
	ID        string
	ChannelID string
}

// Responder is what the core calls to talk back to the platform.
type Responder interface {
	Send(channelID, content string) (*Handle, error)
	Edit(channelID, messageID, content string) (*Handle, error)
	Delete(channelID, messageID string) error
	FetchMember(guildID, userID string) (*Member, error)
}
