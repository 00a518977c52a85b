package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("BONK_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("BONK_SLACK_SIGNING_SECRET"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// IsConfigured reports whether the Slack gateway should run
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure returns nil when no bot token is set. A token without a signing
// secret is rejected because the webhook could not be verified.
func (x *Slack) Configure() (*slack.Client, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.signingSecret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "slack-signing-secret is required with slack-bot-token")
	}

	client, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack client")
	}
	return client, nil
}
