package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/agent/tool"
	"github.com/secmon-lab/bonk/pkg/agent/tool/core"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/repository/memory"
)

func newCtxWithUpdateCapture() (context.Context, *[]string) {
	var messages []string
	ctx := tool.WithUpdate(context.Background(), func(_ context.Context, msg string) {
		messages = append(messages, msg)
	})
	return ctx, &messages
}

func findTool(t *testing.T, name string, room types.RoomID, repo *memory.Memory) func(ctx context.Context, args map[string]any) (map[string]any, error) {
	t.Helper()
	for _, tl := range core.New(repo, room) {
		if tl.Spec().Name == name {
			return tl.Run
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestListBans(t *testing.T) {
	ctx, updates := newCtxWithUpdateCapture()
	repo := memory.New()
	now := time.Now()

	gt.NoError(t, repo.Ban().Create(ctx, model.NewBan("R1", "U1", "U2", "spam", now, time.Hour))).Required()
	gt.NoError(t, repo.Ban().Create(ctx, model.NewBan("R2", "U3", "U2", "other room", now, time.Hour))).Required()

	result, err := findTool(t, "core__list_bans", "R1", repo)(ctx, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result["count"]).Equal(1)

	bans := result["bans"].([]map[string]any)
	gt.Value(t, bans[0]["bannee_id"]).Equal("U1")
	gt.Value(t, bans[0]["reason"]).Equal("spam")
	gt.Array(t, *updates).Length(1)
}

func TestGetActor(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	run := findTool(t, "core__get_actor", "R1", repo)

	birthday := time.Date(2000, 4, 1, 0, 0, 0, 0, time.UTC)
	actor := model.NewActor("U1", time.Now())
	actor.Name = "alice"
	actor.Birthday = &birthday
	_, err := repo.Actor().GetOrCreate(ctx, actor)
	gt.NoError(t, err).Required()

	result, err := run(ctx, map[string]any{"actor_id": "U1"})
	gt.NoError(t, err).Required()
	gt.Value(t, result["found"]).Equal(true)
	gt.Value(t, result["name"]).Equal("alice")
	gt.Value(t, result["birthday"]).Equal("April 1")

	result, err = run(ctx, map[string]any{"actor_id": "U9"})
	gt.NoError(t, err).Required()
	gt.Value(t, result["found"]).Equal(false)

	_, err = run(ctx, map[string]any{})
	gt.Value(t, err).NotNil()
}

func TestGetRoomSettings(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	room := &model.Room{ID: "R1", Platform: types.PlatformConsole, RoomSettings: model.DefaultRoomSettings(), Admins: []types.ActorID{"U1"}}
	_, err := repo.Room().GetOrCreate(ctx, room)
	gt.NoError(t, err).Required()

	result, err := findTool(t, "core__get_room_settings", "R1", repo)(ctx, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result["dice_target"]).Equal(6)
	gt.Value(t, result["admins"]).Equal([]string{"U1"})

	result, err = findTool(t, "core__get_room_settings", "R9", repo)(ctx, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result["found"]).Equal(false)
}
