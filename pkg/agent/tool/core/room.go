package core

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type getRoomSettingsTool struct {
	repo interfaces.Repository
	room types.RoomID
}

func (t *getRoomSettingsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__get_room_settings",
		Description: "Get the rules of this room: the dice target of the roll command, the roll cooldown, how many reactions trigger a ban and the timezone",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *getRoomSettingsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Reading room settings")

	room, err := t.repo.Room().Get(ctx, t.room)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get room", goerr.V("room_id", t.room))
	}
	if room == nil {
		return map[string]any{"found": false}, nil
	}

	admins := make([]string, len(room.Admins))
	for i, a := range room.Admins {
		admins[i] = string(a)
	}

	return map[string]any{
		"found":                true,
		"dice_target":          room.DiceTarget,
		"roll_cooldown_hours":  room.RollCooldownHours,
		"reaction_threshold":   room.ReactionThreshold,
		"turbo_window_seconds": room.TurboWindowSeconds,
		"timezone":             room.Timezone,
		"admins":               admins,
	}, nil
}
