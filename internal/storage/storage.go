package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const usageHistoryLimit = 20

// UsageRecord is one successful command invocation, kept per guild in a
// capped ring.
type UsageRecord struct {
	InvocationID string    `json:"invocation_id"`
	ChannelID    string    `json:"channel_id"`
	UserID       string    `json:"user_id"`
	UserTag      string    `json:"user_tag"`
	Command      string    `json:"command"`
	Args         string    `json:"args"`
	Datetime     time.Time `json:"datetime"`
}

// Record is everything persisted for one guild.
type Record struct {
	Prefix       string        `json:"prefix,omitempty"`
	UsageHistory []UsageRecord `json:"usage_history"`
}

type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord loads a guild's record, creating an empty one on
// first touch. The datastore hands back loosely typed JSON, so values are
// marshalled through once to recover the struct.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		record := &Record{UsageHistory: []UsageRecord{}}
		s.ds.Add(guildID, record)
		return record, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}
	return &record, nil
}

// GuildPrefix returns the guild's prefix override, or "" when none is set.
func (s *Storage) GuildPrefix(guildID string) string {
	if guildID == "" {
		return ""
	}
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return ""
	}
	return record.Prefix
}

// SetGuildPrefix stores a prefix override for the guild.
func (s *Storage) SetGuildPrefix(guildID, prefix string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Prefix = prefix
	s.ds.Add(guildID, record)
	return nil
}

// ClearGuildPrefix removes the guild's prefix override.
func (s *Storage) ClearGuildPrefix(guildID string) error {
	return s.SetGuildPrefix(guildID, "")
}

// AppendUsage records one invocation, trimming the history to its cap.
func (s *Storage) AppendUsage(guildID string, usage UsageRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.UsageHistory = append(record.UsageHistory, usage)
	if len(record.UsageHistory) > usageHistoryLimit {
		record.UsageHistory = record.UsageHistory[len(record.UsageHistory)-usageHistoryLimit:]
	}
	s.ds.Add(guildID, record)
	return nil
}

// UsageHistory returns the guild's recorded invocations, newest last.
func (s *Storage) UsageHistory(guildID string) ([]UsageRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.UsageHistory, nil
}
