package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

func runActorRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetOrCreate then Save birthday", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)
		id := types.ActorID(uniqueID("U"))

		actor, err := repo.Actor().GetOrCreate(ctx, model.NewActor(id, now))
		gt.NoError(t, err).Required()
		gt.Value(t, actor.Birthday).Nil()

		birthday := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
		actor.Birthday = &birthday
		actor.Name = "alice"
		gt.NoError(t, repo.Actor().Save(ctx, actor)).Required()

		again, err := repo.Actor().GetOrCreate(ctx, model.NewActor(id, now.Add(time.Hour)))
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("alice")
		gt.Value(t, again.Birthday).NotNil()
		gt.Bool(t, again.Birthday.Equal(birthday)).True()
	})

	t.Run("Get returns nil for unknown actor", func(t *testing.T) {
		repo := newRepo(t)
		actor, err := repo.Actor().Get(context.Background(), types.ActorID(uniqueID("missing")))
		gt.NoError(t, err).Required()
		gt.Value(t, actor).Nil()
	})
}

func TestActorRepository(t *testing.T) {
	forEachBackend(t, runActorRepositoryTest)
}
