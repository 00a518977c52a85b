package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/cli/config"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	domainConfig "github.com/secmon-lab/bonk/pkg/domain/model/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bonk.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestLoadBotConfig(t *testing.T) {
	t.Run("overlays file on defaults", func(t *testing.T) {
		path := writeConfig(t, `
prefix = "?"

[room]
dice_target = 8
timezone = "Asia/Tokyo"

[emoji]
ban = ["👊", "punch"]

[ban]
reaction = "30m"
turbo_max = "2m"
`)
		cfg, err := config.LoadBotConfig(path)
		gt.NoError(t, err).Required()

		def := domainConfig.DefaultBot()
		gt.Value(t, cfg.Prefix).Equal("?")
		gt.Value(t, cfg.Room.DiceTarget).Equal(8)
		gt.Value(t, cfg.Room.Timezone).Equal("Asia/Tokyo")
		gt.Value(t, cfg.Room.ReactionThreshold).Equal(def.Room.ReactionThreshold)
		gt.Value(t, cfg.BanEmoji).Equal([]string{"👊", "punch"})
		gt.Value(t, cfg.PinEmoji).Equal(def.PinEmoji)
		gt.Value(t, cfg.ReactionBan).Equal(30 * time.Minute)
		gt.Value(t, cfg.TurboMin).Equal(def.TurboMin)
		gt.Value(t, cfg.TurboMax).Equal(2 * time.Minute)
		gt.Value(t, cfg.MaxBan).Equal(def.MaxBan)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadBotConfig(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("broken duration", func(t *testing.T) {
		_, err := config.LoadBotConfig(writeConfig(t, "[ban]\nreaction = \"soon\"\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("broken toml", func(t *testing.T) {
		_, err := config.LoadBotConfig(writeConfig(t, "prefix = \n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid room defaults", func(t *testing.T) {
		_, err := config.LoadBotConfig(writeConfig(t, "[room]\ndice_target = 1\n"))
		gt.Error(t, err).Is(model.ErrInvalidRoomSettings)
	})

	t.Run("turbo band must be ordered", func(t *testing.T) {
		_, err := config.LoadBotConfig(writeConfig(t, "[ban]\nturbo_min = \"5m\"\nturbo_max = \"1m\"\n"))
		gt.Error(t, err).Is(domainConfig.ErrInvalidBotConfig)
	})
}

func TestApp_Configure(t *testing.T) {
	cfg, err := config.NewAppForTest("").Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg).Equal(domainConfig.DefaultBot())
}

func TestLogger_NewLogger(t *testing.T) {
	type credential struct {
		User  string
		Token string `masq:"secret"`
	}

	t.Run("json output redacts secrets", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("debug", "json").NewLogger(&buf)
		gt.NoError(t, err).Required()

		logger.Info("connected", "cred", credential{User: "bonk", Token: "s3cr3t-token"})
		gt.String(t, buf.String()).Contains("bonk")
		gt.Bool(t, strings.Contains(buf.String(), "s3cr3t-token")).False()
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := config.NewLoggerForTest("warn", "json").NewLogger(&buf)
		gt.NoError(t, err).Required()

		logger.Info("quiet")
		gt.Value(t, buf.Len()).Equal(0)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "json").NewLogger(&bytes.Buffer{})
		gt.Error(t, err).Is(config.ErrInvalidLogLevel)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml").NewLogger(&bytes.Buffer{})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestSlack_Configure(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		client, err := config.NewSlackForTest("", "").Configure()
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("token requires signing secret", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingSecret)
	})

	t.Run("configured", func(t *testing.T) {
		client, err := config.NewSlackForTest("xoxb-test", "secret").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, client).NotNil()
	})
}

func TestGemini_Configure(t *testing.T) {
	client, err := config.NewGeminiForTest("", "us-central1").Configure(t.Context())
	gt.NoError(t, err)
	gt.Value(t, client).Nil()
}

func TestBackends(t *testing.T) {
	t.Run("memory queue", func(t *testing.T) {
		q, closer, err := config.NewQueueForTest("memory").Configure(t.Context())
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, q).NotNil()
	})

	t.Run("unknown queue", func(t *testing.T) {
		_, _, err := config.NewQueueForTest("kafka").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})

	t.Run("memory repository", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore needs project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
