package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// RoomSettings holds the per room knobs that commands and reaction handlers read
type RoomSettings struct {
	DiceTarget         int
	RollCooldownHours  int
	ReactionThreshold  int
	TurboWindowSeconds int
	Timezone           string
	BoardChannelID     types.ChannelID
}

// DefaultRoomSettings returns the settings a new room starts with
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		DiceTarget:         6,
		RollCooldownHours:  24,
		ReactionThreshold:  3,
		TurboWindowSeconds: 60,
		Timezone:           "UTC",
	}
}

// Validate checks the settings are usable
func (s RoomSettings) Validate() error {
	if s.DiceTarget < 2 {
		return goerr.Wrap(ErrInvalidRoomSettings, "dice target must be at least 2", goerr.V("dice_target", s.DiceTarget))
	}
	if s.RollCooldownHours < 0 {
		return goerr.Wrap(ErrInvalidRoomSettings, "roll cooldown must not be negative", goerr.V("roll_cooldown_hours", s.RollCooldownHours))
	}
	if s.ReactionThreshold < 1 {
		return goerr.Wrap(ErrInvalidRoomSettings, "reaction threshold must be at least 1", goerr.V("reaction_threshold", s.ReactionThreshold))
	}
	if s.TurboWindowSeconds < 0 {
		return goerr.Wrap(ErrInvalidRoomSettings, "turbo window must not be negative", goerr.V("turbo_window_seconds", s.TurboWindowSeconds))
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return goerr.Wrap(ErrInvalidRoomSettings, "unknown timezone", goerr.V("timezone", s.Timezone))
	}
	return nil
}

// Room is a group conversation. It is created with default settings on the first event seen from it.
type Room struct {
	ID       types.RoomID
	Platform types.Platform
	RoomSettings
	Admins    []types.ActorID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates a room with the given settings
func NewRoom(id types.RoomID, platform types.Platform, settings RoomSettings, now time.Time) *Room {
	return &Room{
		ID:           id,
		Platform:     platform,
		RoomSettings: settings,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Location resolves the room timezone, UTC when it is empty or unknown
func (r *Room) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin reports whether actor may change room settings
func (r *Room) IsAdmin(actor types.ActorID) bool {
	return slices.Contains(r.Admins, actor)
}

// TurboWindow is the span after a message is posted in which a reaction ban becomes a turbo ban
func (r *Room) TurboWindow() time.Duration {
	return time.Duration(r.TurboWindowSeconds) * time.Second
}

// RollCooldown is the span after a roll in which another roll raises the gambling penalty
func (r *Room) RollCooldown() time.Duration {
	return time.Duration(r.RollCooldownHours) * time.Hour
}

// Copy returns a deep copy of the room
func (r *Room) Copy() *Room {
	c := *r
	c.Admins = slices.Clone(r.Admins)
	return &c
}
