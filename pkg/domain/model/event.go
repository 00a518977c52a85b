package model

import (
	"time"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// MessageEvent is a platform independent text message
type MessageEvent struct {
	Platform   types.Platform
	RoomID     types.RoomID
	ChannelID  types.ChannelID
	MessageID  types.MessageID
	AuthorID   types.ActorID
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// ReactionEvent is a platform independent emoji reaction added to a message.
// Count is the number of reactions with the same emoji on the message after the addition.
type ReactionEvent struct {
	Platform         types.Platform
	RoomID           types.RoomID
	ChannelID        types.ChannelID
	MessageID        types.MessageID
	MessageAuthorID  types.ActorID
	ReactorID        types.ActorID
	Emoji            string
	Count            int
	MessageCreatedAt time.Time
}
