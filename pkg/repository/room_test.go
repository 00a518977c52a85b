package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

func runRoomRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	settings := model.RoomSettings{
		DiceTarget:         6,
		RollCooldownHours:  1,
		ReactionThreshold:  3,
		TurboWindowSeconds: 60,
		Timezone:           "UTC",
	}

	t.Run("GetOrCreate stores the first room only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		id := types.RoomID(uniqueID("R"))

		created, err := repo.Room().GetOrCreate(ctx, model.NewRoom(id, types.PlatformSlack, settings, now))
		gt.NoError(t, err).Required()
		gt.Value(t, created.DiceTarget).Equal(6)

		other := settings
		other.DiceTarget = 20
		again, err := repo.Room().GetOrCreate(ctx, model.NewRoom(id, types.PlatformSlack, other, now))
		gt.NoError(t, err).Required()
		gt.Value(t, again.DiceTarget).Equal(6)
	})

	t.Run("Get returns nil for unknown room", func(t *testing.T) {
		repo := newRepo(t)
		room, err := repo.Room().Get(context.Background(), types.RoomID(uniqueID("missing")))
		gt.NoError(t, err).Required()
		gt.Value(t, room).Nil()
	})

	t.Run("Save updates settings and admins", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		id := types.RoomID(uniqueID("R"))

		room, err := repo.Room().GetOrCreate(ctx, model.NewRoom(id, types.PlatformDiscord, settings, now))
		gt.NoError(t, err).Required()

		room.ReactionThreshold = 5
		room.Admins = append(room.Admins, "U1")
		gt.NoError(t, repo.Room().Save(ctx, room)).Required()

		got, err := repo.Room().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ReactionThreshold).Equal(5)
		gt.Bool(t, got.IsAdmin("U1")).True()
		gt.Value(t, got.Platform).Equal(types.PlatformDiscord)
	})

	t.Run("returned room is detached from storage", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := types.RoomID(uniqueID("R"))

		room, err := repo.Room().GetOrCreate(ctx, model.NewRoom(id, types.PlatformSlack, settings, time.Now()))
		gt.NoError(t, err).Required()
		room.DiceTarget = 100

		got, err := repo.Room().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.DiceTarget).Equal(6)
	})

	t.Run("Save unknown room fails", func(t *testing.T) {
		repo := newRepo(t)
		room := model.NewRoom(types.RoomID(uniqueID("missing")), types.PlatformSlack, settings, time.Now())
		err := repo.Room().Save(context.Background(), room)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}

func TestRoomRepository(t *testing.T) {
	forEachBackend(t, runRoomRepositoryTest)
}
