package interfaces

import (
	"context"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Oracle answers free form questions for the ask command
type Oracle interface {
	Ask(ctx context.Context, room types.RoomID, prompt string) (string, error)
}
