package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type actorRepository struct {
	mu     sync.RWMutex
	actors map[types.ActorID]*model.Actor
}

func newActorRepository() *actorRepository {
	return &actorRepository{
		actors: make(map[types.ActorID]*model.Actor),
	}
}

func (r *actorRepository) GetOrCreate(ctx context.Context, actor *model.Actor) (*model.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.actors[actor.ID]; ok {
		return existing.Copy(), nil
	}
	r.actors[actor.ID] = actor.Copy()
	return actor.Copy(), nil
}

func (r *actorRepository) Get(ctx context.Context, id types.ActorID) (*model.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.actors[id]
	if !ok {
		return nil, nil
	}
	return actor.Copy(), nil
}

func (r *actorRepository) Save(ctx context.Context, actor *model.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[actor.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "actor not found", goerr.V("actor_id", actor.ID))
	}
	r.actors[actor.ID] = actor.Copy()
	return nil
}
