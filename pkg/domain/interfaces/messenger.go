package interfaces

import (
	"context"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Messenger is the outbound side of a chat gateway
type Messenger interface {
	Send(ctx context.Context, channel types.ChannelID, text string) (types.MessageID, error)
	Reply(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) (types.MessageID, error)
	React(ctx context.Context, channel types.ChannelID, message types.MessageID, emoji string) error
	Edit(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) error
	Pin(ctx context.Context, channel types.ChannelID, message types.MessageID) error
}
