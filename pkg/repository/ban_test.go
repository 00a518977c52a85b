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

func runBanRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetCurrent returns the latest expiry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		room := types.RoomID(uniqueID("R"))

		short := model.NewBan(room, "U1", "U2", "short", now, time.Hour)
		long := model.NewBan(room, "U1", "U2", "long", now, 3*time.Hour)
		other := model.NewBan(room, "U9", "U2", "other", now, 5*time.Hour)
		for _, b := range []*model.Ban{short, long, other} {
			gt.NoError(t, repo.Ban().Create(ctx, b)).Required()
		}

		current, err := repo.Ban().GetCurrent(ctx, room, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, current).NotNil().Required()
		gt.Value(t, current.ID).Equal(long.ID)
	})

	t.Run("voided and acknowledged bans are not current", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		room := types.RoomID(uniqueID("R"))

		voided := model.NewBan(room, "U1", "U2", "", now, 3*time.Hour)
		acked := model.NewBan(room, "U1", "U2", "", now, 2*time.Hour)
		live := model.NewBan(room, "U1", "U2", "", now, time.Hour)
		for _, b := range []*model.Ban{voided, acked, live} {
			gt.NoError(t, repo.Ban().Create(ctx, b)).Required()
		}

		voided.Void(now)
		gt.NoError(t, repo.Ban().Save(ctx, voided)).Required()
		acked.Acknowledge()
		gt.NoError(t, repo.Ban().Save(ctx, acked)).Required()

		current, err := repo.Ban().GetCurrent(ctx, room, "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, current.ID).Equal(live.ID)

		got, err := repo.Ban().Get(ctx, room, voided.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Voided).True()
		gt.Value(t, got.VoidedEarlyAt).NotNil()

		list, err := repo.Ban().ListCurrent(ctx, room)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
	})

	t.Run("GetCurrent returns nil when not banned", func(t *testing.T) {
		repo := newRepo(t)
		current, err := repo.Ban().GetCurrent(context.Background(), types.RoomID(uniqueID("R")), "U1")
		gt.NoError(t, err).Required()
		gt.Value(t, current).Nil()
	})

	t.Run("ListCurrent orders by expiry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		room := types.RoomID(uniqueID("R"))

		late := model.NewBan(room, "U1", "U3", "", now, 2*time.Hour)
		early := model.NewBan(room, "U2", "U3", "", now, time.Hour)
		gt.NoError(t, repo.Ban().Create(ctx, late)).Required()
		gt.NoError(t, repo.Ban().Create(ctx, early)).Required()

		list, err := repo.Ban().ListCurrent(ctx, room)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2).Required()
		gt.Value(t, list[0].ID).Equal(early.ID)
		gt.Value(t, list[1].ID).Equal(late.ID)
	})

	t.Run("Save unknown ban fails", func(t *testing.T) {
		repo := newRepo(t)
		ban := model.NewBan(types.RoomID(uniqueID("R")), "U1", "U2", "", time.Now(), time.Hour)
		err := repo.Ban().Save(context.Background(), ban)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Create rejects invalid ban", func(t *testing.T) {
		repo := newRepo(t)
		ban := model.NewBan(types.RoomID(uniqueID("R")), "", "U2", "", time.Now(), time.Hour)
		gt.Error(t, repo.Ban().Create(context.Background(), ban)).Is(model.ErrInvalidBan)
	})
}

func TestBanRepository(t *testing.T) {
	forEachBackend(t, runBanRepositoryTest)
}
