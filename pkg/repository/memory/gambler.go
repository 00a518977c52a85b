package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type gamblerKey struct {
	room  types.RoomID
	actor types.ActorID
}

type gamblerRepository struct {
	mu       sync.RWMutex
	gamblers map[gamblerKey]model.Gambler
}

func newGamblerRepository() *gamblerRepository {
	return &gamblerRepository{
		gamblers: make(map[gamblerKey]model.Gambler),
	}
}

func (r *gamblerRepository) GetOrCreate(ctx context.Context, g *model.Gambler) (*model.Gambler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gamblerKey{room: g.RoomID, actor: g.ActorID}
	if existing, ok := r.gamblers[key]; ok {
		return &existing, nil
	}
	r.gamblers[key] = *g
	copied := *g
	return &copied, nil
}

func (r *gamblerRepository) Save(ctx context.Context, g *model.Gambler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gamblerKey{room: g.RoomID, actor: g.ActorID}
	if _, ok := r.gamblers[key]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "gambler not found", goerr.V("room_id", g.RoomID), goerr.V("actor_id", g.ActorID))
	}
	r.gamblers[key] = *g
	return nil
}
