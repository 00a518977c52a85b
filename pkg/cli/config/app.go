package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	domainConfig "github.com/secmon-lab/bonk/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// App holds the path of the bot behavior file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Bot config file (TOML). Defaults are used when omitted",
			Sources:     cli.EnvVars("BONK_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure returns the default bot config overlaid with the file, if any
func (x *App) Configure() (*domainConfig.Bot, error) {
	if x.path == "" {
		return domainConfig.DefaultBot(), nil
	}
	return LoadBotConfig(x.path)
}

type botFile struct {
	Prefix string   `toml:"prefix"`
	Room   roomFile `toml:"room"`
	Emoji  struct {
		Ban   []string `toml:"ban"`
		Pin   []string `toml:"pin"`
		Shame string   `toml:"shame"`
	} `toml:"emoji"`
	Ban struct {
		Reaction string `toml:"reaction"`
		Max      string `toml:"max"`
		TurboMin string `toml:"turbo_min"`
		TurboMax string `toml:"turbo_max"`
	} `toml:"ban"`
}

type roomFile struct {
	DiceTarget         int    `toml:"dice_target"`
	RollCooldownHours  int    `toml:"roll_cooldown_hours"`
	ReactionThreshold  int    `toml:"reaction_threshold"`
	TurboWindowSeconds int    `toml:"turbo_window_seconds"`
	Timezone           string `toml:"timezone"`
}

func newBotFile(cfg *domainConfig.Bot) *botFile {
	f := &botFile{
		Prefix: cfg.Prefix,
		Room: roomFile{
			DiceTarget:         cfg.Room.DiceTarget,
			RollCooldownHours:  cfg.Room.RollCooldownHours,
			ReactionThreshold:  cfg.Room.ReactionThreshold,
			TurboWindowSeconds: cfg.Room.TurboWindowSeconds,
			Timezone:           cfg.Room.Timezone,
		},
	}
	f.Emoji.Ban = cfg.BanEmoji
	f.Emoji.Pin = cfg.PinEmoji
	f.Emoji.Shame = cfg.ShameEmoji
	f.Ban.Reaction = cfg.ReactionBan.String()
	f.Ban.Max = cfg.MaxBan.String()
	f.Ban.TurboMin = cfg.TurboMin.String()
	f.Ban.TurboMax = cfg.TurboMax.String()
	return f
}

func (f *botFile) toBot() (*domainConfig.Bot, error) {
	durations := map[string]string{
		"ban.reaction":  f.Ban.Reaction,
		"ban.max":       f.Ban.Max,
		"ban.turbo_min": f.Ban.TurboMin,
		"ban.turbo_max": f.Ban.TurboMax,
	}
	parsed := make(map[string]time.Duration, len(durations))
	for key, s := range durations {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid duration", goerr.V(FieldKey, key), goerr.V("value", s))
		}
		parsed[key] = d
	}

	return &domainConfig.Bot{
		Prefix: f.Prefix,
		Room: model.RoomSettings{
			DiceTarget:         f.Room.DiceTarget,
			RollCooldownHours:  f.Room.RollCooldownHours,
			ReactionThreshold:  f.Room.ReactionThreshold,
			TurboWindowSeconds: f.Room.TurboWindowSeconds,
			Timezone:           f.Room.Timezone,
		},
		BanEmoji:    f.Emoji.Ban,
		PinEmoji:    f.Emoji.Pin,
		ShameEmoji:  f.Emoji.Shame,
		ReactionBan: parsed["ban.reaction"],
		MaxBan:      parsed["ban.max"],
		TurboMin:    parsed["ban.turbo_min"],
		TurboMax:    parsed["ban.turbo_max"],
	}, nil
}

// LoadBotConfig reads a TOML file. Keys missing from the file keep their defaults.
func LoadBotConfig(path string) (*domainConfig.Bot, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "no config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	f := newBotFile(domainConfig.DefaultBot())
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	cfg, err := f.toBot()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid config", goerr.V(ConfigPathKey, path))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return cfg, nil
}
