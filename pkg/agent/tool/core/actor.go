package core

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type getActorTool struct {
	repo interfaces.Repository
}

func (t *getActorTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__get_actor",
		Description: "Get what the bot knows about a chat user: display name, when they were last seen and their birthday",
		Parameters: map[string]*gollem.Parameter{
			"actor_id": {
				Type:        gollem.TypeString,
				Description: "User ID, as in a <@ID> mention",
				Required:    true,
			},
		},
	}
}

func (t *getActorTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, _ := args["actor_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("actor_id is required")
	}

	tool.Update(ctx, fmt.Sprintf("Looking up user %s", id))

	actor, err := t.repo.Actor().Get(ctx, types.ActorID(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get actor", goerr.V("actor_id", id))
	}
	if actor == nil {
		return map[string]any{"found": false}, nil
	}

	result := map[string]any{
		"found":        true,
		"name":         actor.DisplayName(),
		"last_seen_at": actor.LastSeenAt.Format(time.RFC3339),
	}
	if actor.Birthday != nil {
		result["birthday"] = actor.Birthday.Format("January 2")
	}
	return result, nil
}
