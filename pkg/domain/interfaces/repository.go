package interfaces

import (
	"context"

	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Repository defines the interface for data persistence. Every write method
// is a commit point; nothing is buffered across calls.
type Repository interface {
	Room() RoomRepository
	Actor() ActorRepository
	Ban() BanRepository
	Reaction() ReactionRepository
	Gambler() GamblerRepository

	Close() error
}

// RoomRepository persists rooms
type RoomRepository interface {
	// GetOrCreate returns the stored room with room.ID, storing room first when none exists
	GetOrCreate(ctx context.Context, room *model.Room) (*model.Room, error)

	// Get returns nil without error when the room does not exist
	Get(ctx context.Context, id types.RoomID) (*model.Room, error)

	Save(ctx context.Context, room *model.Room) error
}

// ActorRepository persists actors
type ActorRepository interface {
	// GetOrCreate returns the stored actor with actor.ID, storing actor first when none exists
	GetOrCreate(ctx context.Context, actor *model.Actor) (*model.Actor, error)

	// Get returns nil without error when the actor does not exist
	Get(ctx context.Context, id types.ActorID) (*model.Actor, error)

	Save(ctx context.Context, actor *model.Actor) error
}

// BanRepository persists bans
type BanRepository interface {
	Create(ctx context.Context, ban *model.Ban) error

	// Get returns nil without error when the ban does not exist
	Get(ctx context.Context, room types.RoomID, id types.BanID) (*model.Ban, error)

	// GetCurrent returns the current ban of bannee with the latest expiry, or nil
	GetCurrent(ctx context.Context, room types.RoomID, bannee types.ActorID) (*model.Ban, error)

	// ListCurrent returns all current bans in room ordered by expiry
	ListCurrent(ctx context.Context, room types.RoomID) ([]*model.Ban, error)

	Save(ctx context.Context, ban *model.Ban) error
}

// ReactionRepository persists reaction dedupe records
type ReactionRepository interface {
	// Get returns nil without error when no record exists
	Get(ctx context.Context, room types.RoomID, message types.MessageID, emoji string) (*model.ReactionRecord, error)

	Put(ctx context.Context, record *model.ReactionRecord) error
}

// GamblerRepository persists roll state
type GamblerRepository interface {
	// GetOrCreate returns the stored gambler, storing g first when none exists
	GetOrCreate(ctx context.Context, g *model.Gambler) (*model.Gambler, error)

	Save(ctx context.Context, g *model.Gambler) error
}
