package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type roomRepository struct {
	mu    sync.RWMutex
	rooms map[types.RoomID]*model.Room
}

func newRoomRepository() *roomRepository {
	return &roomRepository{
		rooms: make(map[types.RoomID]*model.Room),
	}
}

func (r *roomRepository) GetOrCreate(ctx context.Context, room *model.Room) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rooms[room.ID]; ok {
		return existing.Copy(), nil
	}
	r.rooms[room.ID] = room.Copy()
	return room.Copy(), nil
}

func (r *roomRepository) Get(ctx context.Context, id types.RoomID) (*model.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return room.Copy(), nil
}

func (r *roomRepository) Save(ctx context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "room not found", goerr.V("room_id", room.ID))
	}
	r.rooms[room.ID] = room.Copy()
	return nil
}
