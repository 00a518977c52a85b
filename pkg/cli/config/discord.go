package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/service/discord"
	"github.com/urfave/cli/v3"
)

type Discord struct {
	botToken string
}

func (x *Discord) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "discord-bot-token",
			Usage:       "Discord bot token",
			Category:    "Discord",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("BONK_DISCORD_BOT_TOKEN"),
		},
	}
}

func (x Discord) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("bot-token.len", len(x.botToken)))
}

func (x *Discord) IsConfigured() bool {
	return x.botToken != ""
}

// Configure returns nil when no bot token is set
func (x *Discord) Configure(opts ...discord.GatewayOption) (*discord.Gateway, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	gw, err := discord.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create discord gateway")
	}
	return gw, nil
}
