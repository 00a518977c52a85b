package core

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type listBansTool struct {
	repo interfaces.Repository
	room types.RoomID
}

func (t *listBansTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__list_bans",
		Description: "List the bans of this room that have not ended yet, with who was banned, by whom, why and until when",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *listBansTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Looking up current bans")

	bans, err := t.repo.Ban().ListCurrent(ctx, t.room)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list bans", goerr.V("room_id", t.room))
	}

	items := make([]map[string]any, len(bans))
	for i, b := range bans {
		items[i] = map[string]any{
			"bannee_id":  string(b.BanneeID),
			"banner_id":  string(b.BannerID),
			"reason":     b.Reason,
			"issued_at":  b.IssuedAt.Format(time.RFC3339),
			"expires_at": b.ExpiresAt.Format(time.RFC3339),
			"turbo":      b.Turbo,
		}
	}

	return map[string]any{
		"bans":  items,
		"count": len(items),
	}, nil
}
