package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Ban is a timed ban of an actor inside a room.
//
// A ban is current while it is neither voided nor acknowledged. Among the current
// bans of a bannee, the one with the latest expiry is authoritative. Acknowledged is
// set once the end of the ban has been announced, so a redelivered unban job is a no-op.
type Ban struct {
	ID            types.BanID
	RoomID        types.RoomID
	BanneeID      types.ActorID
	BannerID      types.ActorID
	Reason        string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Voided        bool
	VoidedEarlyAt *time.Time
	Acknowledged  bool
	Turbo         bool
}

// NewBan creates a ban of bannee lasting for d from now
func NewBan(room types.RoomID, bannee, banner types.ActorID, reason string, now time.Time, d time.Duration) *Ban {
	return &Ban{
		ID:        types.NewBanID(),
		RoomID:    room,
		BanneeID:  bannee,
		BannerID:  banner,
		Reason:    reason,
		IssuedAt:  now,
		ExpiresAt: now.Add(d),
	}
}

// Validate checks the ban has the identifiers needed to persist it
func (b *Ban) Validate() error {
	if b.ID == "" || b.RoomID == "" || b.BanneeID == "" {
		return goerr.Wrap(ErrInvalidBan, "ban requires id, room and bannee",
			goerr.V("ban_id", b.ID), goerr.V("room_id", b.RoomID), goerr.V("bannee_id", b.BanneeID))
	}
	if b.ExpiresAt.Before(b.IssuedAt) {
		return goerr.Wrap(ErrInvalidBan, "ban expires before it is issued", goerr.V("ban_id", b.ID))
	}
	return nil
}

// IsCurrent reports whether the ban has been neither voided nor acknowledged
func (b *Ban) IsCurrent() bool {
	return !b.Voided && !b.Acknowledged
}

// InEffect reports whether the ban still restricts the bannee at now
func (b *Ban) InEffect(now time.Time) bool {
	return b.IsCurrent() && now.Before(b.ExpiresAt)
}

// Void ends the ban early
func (b *Ban) Void(now time.Time) {
	b.Voided = true
	b.VoidedEarlyAt = &now
}

// Acknowledge marks the end of the ban as announced
func (b *Ban) Acknowledge() {
	b.Acknowledged = true
}

// Duration is the full length of the ban
func (b *Ban) Duration() time.Duration {
	return b.ExpiresAt.Sub(b.IssuedAt)
}

// Copy returns a deep copy of the ban
func (b *Ban) Copy() *Ban {
	c := *b
	if b.VoidedEarlyAt != nil {
		v := *b.VoidedEarlyAt
		c.VoidedEarlyAt = &v
	}
	return &c
}
