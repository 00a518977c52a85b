package model

import (
	"time"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// ReactionRecord marks that the reaction handlers already acted on an emoji for a message.
// It exists so a reaction count bouncing around the threshold fires at most once.
type ReactionRecord struct {
	RoomID    types.RoomID
	MessageID types.MessageID
	Emoji     string
	HandledAt time.Time
}
