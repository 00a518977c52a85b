package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool/core"
	"github.com/secmon-lab/bonk/pkg/cli/config"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/service/discord"
	"github.com/secmon-lab/bonk/pkg/service/oracle"
	"github.com/secmon-lab/bonk/pkg/service/slack"
	"github.com/secmon-lab/bonk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// platforms holds the chat gateways shared by serve and worker
type platforms struct {
	slack   *slack.Client
	discord *discord.Gateway
	bot     *usecase.Bot
}

type botConfigs struct {
	app     config.App
	slack   config.Slack
	discord config.Discord
	gemini  config.Gemini
}

func (x *botConfigs) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.app.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.discord.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	return flags
}

// newPlatforms builds the bot with every configured messenger. The discord
// gateway forwards its events to the bot once it exists.
func newPlatforms(ctx context.Context, cfgs *botConfigs, repo interfaces.Repository, queue interfaces.TaskQueue) (*platforms, error) {
	botCfg, err := cfgs.app.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load bot config")
	}

	p := &platforms{}

	if p.slack, err = cfgs.slack.Configure(); err != nil {
		return nil, err
	}

	p.discord, err = cfgs.discord.Configure(
		discord.WithMessageFunc(func(ctx context.Context, ev *model.MessageEvent) error {
			_, err := p.bot.HandleMessage(ctx, ev)
			return err
		}),
		discord.WithReactionFunc(func(ctx context.Context, ev *model.ReactionEvent) error {
			_, err := p.bot.HandleReaction(ctx, ev)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	if p.slack == nil && p.discord == nil {
		return nil, goerr.Wrap(config.ErrInvalidConfig, "no chat platform is configured, set a Slack or Discord bot token")
	}

	opts := []usecase.Option{usecase.WithConfig(botCfg)}
	if p.slack != nil {
		opts = append(opts, usecase.WithMessenger(types.PlatformSlack, p.slack))
	}
	if p.discord != nil {
		opts = append(opts, usecase.WithMessenger(types.PlatformDiscord, p.discord.Client()))
	}

	llm, err := cfgs.gemini.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if llm != nil {
		opts = append(opts, usecase.WithOracle(oracle.New(llm,
			oracle.WithTools(func(room types.RoomID) []gollem.Tool { return core.New(repo, room) }),
		)))
	}

	p.bot = usecase.NewBot(repo, queue, opts...)
	return p, nil
}
