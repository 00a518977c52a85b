package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type reactionKey struct {
	room    types.RoomID
	message types.MessageID
	emoji   string
}

type reactionRepository struct {
	mu      sync.RWMutex
	records map[reactionKey]model.ReactionRecord
}

func newReactionRepository() *reactionRepository {
	return &reactionRepository{
		records: make(map[reactionKey]model.ReactionRecord),
	}
}

func (r *reactionRepository) Get(ctx context.Context, room types.RoomID, message types.MessageID, emoji string) (*model.ReactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[reactionKey{room: room, message: message, emoji: emoji}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *reactionRepository) Put(ctx context.Context, record *model.ReactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[reactionKey{room: record.RoomID, message: record.MessageID, emoji: record.Emoji}] = *record
	return nil
}
