package model

import (
	"time"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Actor is a chat user known to the bot
type Actor struct {
	ID         types.ActorID
	Name       string
	Birthday   *time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewActor creates an actor first seen at now
func NewActor(id types.ActorID, now time.Time) *Actor {
	return &Actor{
		ID:         id,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Copy returns a deep copy of the actor
func (a *Actor) Copy() *Actor {
	c := *a
	if a.Birthday != nil {
		b := *a.Birthday
		c.Birthday = &b
	}
	return &c
}

// DisplayName returns the name when known, the mention otherwise
func (a *Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID.Mention()
}
