package model

import (
	"time"

	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Gambler is the per room roll state of an actor
type Gambler struct {
	RoomID     types.RoomID
	ActorID    types.ActorID
	LastRollAt time.Time
	Penalty    int
	Rolls      int
	Wins       int
}

// NewGambler creates a gambler that never rolled
func NewGambler(room types.RoomID, actor types.ActorID) *Gambler {
	return &Gambler{RoomID: room, ActorID: actor}
}

// Roll records a roll at now. Rolling again within cooldown of the previous roll
// raises the penalty by one; rolling after it resets the penalty.
func (g *Gambler) Roll(now time.Time, cooldown time.Duration) {
	if !g.LastRollAt.IsZero() && now.Sub(g.LastRollAt) < cooldown {
		g.Penalty++
	} else {
		g.Penalty = 0
	}
	g.LastRollAt = now
	g.Rolls++
}

// PenaltyDuration is the squared penalty in hours added to a lost roll
func (g *Gambler) PenaltyDuration() time.Duration {
	return time.Duration(g.Penalty*g.Penalty) * time.Hour
}
