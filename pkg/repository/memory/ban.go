package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type banRepository struct {
	mu   sync.RWMutex
	bans map[types.RoomID]map[types.BanID]*model.Ban
}

func newBanRepository() *banRepository {
	return &banRepository{
		bans: make(map[types.RoomID]map[types.BanID]*model.Ban),
	}
}

func (r *banRepository) Create(ctx context.Context, ban *model.Ban) error {
	if err := ban.Validate(); err != nil {
		return goerr.Wrap(err, "failed to create ban")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.bans[ban.RoomID]
	if !ok {
		room = make(map[types.BanID]*model.Ban)
		r.bans[ban.RoomID] = room
	}
	if _, exists := room[ban.ID]; exists {
		return goerr.New("ban already exists", goerr.V("ban_id", ban.ID))
	}
	room[ban.ID] = ban.Copy()
	return nil
}

func (r *banRepository) Get(ctx context.Context, roomID types.RoomID, id types.BanID) (*model.Ban, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ban, ok := r.bans[roomID][id]
	if !ok {
		return nil, nil
	}
	return ban.Copy(), nil
}

func (r *banRepository) GetCurrent(ctx context.Context, roomID types.RoomID, bannee types.ActorID) (*model.Ban, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Ban
	for _, ban := range r.bans[roomID] {
		if ban.BanneeID != bannee || !ban.IsCurrent() {
			continue
		}
		if latest == nil || ban.ExpiresAt.After(latest.ExpiresAt) {
			latest = ban
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Copy(), nil
}

func (r *banRepository) ListCurrent(ctx context.Context, roomID types.RoomID) ([]*model.Ban, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bans []*model.Ban
	for _, ban := range r.bans[roomID] {
		if ban.IsCurrent() {
			bans = append(bans, ban.Copy())
		}
	}
	sort.Slice(bans, func(i, j int) bool {
		return bans[i].ExpiresAt.Before(bans[j].ExpiresAt)
	})
	return bans, nil
}

func (r *banRepository) Save(ctx context.Context, ban *model.Ban) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bans[ban.RoomID][ban.ID]; !ok {
		return goerr.Wrap(interfaces.ErrNotFound, "ban not found", goerr.V("ban_id", ban.ID), goerr.V("room_id", ban.RoomID))
	}
	r.bans[ban.RoomID][ban.ID] = ban.Copy()
	return nil
}
