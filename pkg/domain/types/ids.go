package types

import (
	"github.com/google/uuid"
)

// RoomID identifies a group conversation: a Slack workspace, a Discord guild or the local console.
type RoomID string

func (x RoomID) String() string { return string(x) }

// ChannelID identifies a channel inside a room.
type ChannelID string

func (x ChannelID) String() string { return string(x) }

// MessageID identifies a single message inside a channel.
type MessageID string

func (x MessageID) String() string { return string(x) }

// ActorID identifies a user of the chat platform.
type ActorID string

func (x ActorID) String() string { return string(x) }

// Mention renders the platform independent mention markup for the actor.
func (x ActorID) Mention() string { return "<@" + string(x) + ">" }

// BanID identifies a ban record.
type BanID string

func (x BanID) String() string { return string(x) }

// NewBanID returns a time ordered ban identifier.
func NewBanID() BanID {
	return BanID(uuid.Must(uuid.NewV7()).String())
}

// JobID identifies a scheduled job in the task queue.
type JobID string

func (x JobID) String() string { return string(x) }

// NewJobID returns a time ordered job identifier.
func NewJobID() JobID {
	return JobID(uuid.Must(uuid.NewV7()).String())
}
