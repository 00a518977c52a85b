package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
)

var ErrInvalidBotConfig = goerr.New("invalid bot config")

// Bot holds the bot wide behavior loaded from the app config file
type Bot struct {
	// Prefix starts every command, "!" by default
	Prefix string

	// Room is applied to rooms created on first contact
	Room model.RoomSettings

	// BanEmoji and PinEmoji are aliases of one reaction each, e.g. "hammer" on Slack
	// and "🔨" on Discord. ShameEmoji is added to messages of banned actors.
	BanEmoji   []string
	PinEmoji   []string
	ShameEmoji string

	// ReactionBan is the length of a ban voted by reactions
	ReactionBan time.Duration

	TurboMin time.Duration
	TurboMax time.Duration

	// MaxBan caps bans issued by commands
	MaxBan time.Duration
}

// DefaultBot returns the config used when no file is given
func DefaultBot() *Bot {
	return &Bot{
		Prefix:      "!",
		Room:        model.DefaultRoomSettings(),
		BanEmoji:    []string{"🔨", "hammer"},
		PinEmoji:    []string{"📌", "pushpin"},
		ShameEmoji:  "🔨",
		ReactionBan: time.Hour,
		TurboMin:    60 * time.Second,
		TurboMax:    300 * time.Second,
		MaxBan:      7 * 24 * time.Hour,
	}
}

func (x *Bot) Validate() error {
	if x.Prefix == "" {
		return goerr.Wrap(ErrInvalidBotConfig, "prefix is required")
	}
	if err := x.Room.Validate(); err != nil {
		return goerr.Wrap(err, "invalid room defaults")
	}
	if len(x.BanEmoji) == 0 || len(x.PinEmoji) == 0 {
		return goerr.Wrap(ErrInvalidBotConfig, "ban and pin emoji are required")
	}
	if x.ReactionBan <= 0 || x.MaxBan <= 0 {
		return goerr.Wrap(ErrInvalidBotConfig, "ban lengths must be positive",
			goerr.V("reaction_ban", x.ReactionBan), goerr.V("max_ban", x.MaxBan))
	}
	if x.TurboMin <= 0 || x.TurboMax < x.TurboMin {
		return goerr.Wrap(ErrInvalidBotConfig, "invalid turbo band",
			goerr.V("turbo_min", x.TurboMin), goerr.V("turbo_max", x.TurboMax))
	}
	return nil
}
