package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool/core"
	"github.com/secmon-lab/bonk/pkg/cli/config"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/repository/memory"
	"github.com/secmon-lab/bonk/pkg/service/console"
	"github.com/secmon-lab/bonk/pkg/service/oracle"
	"github.com/secmon-lab/bonk/pkg/service/queue"
	"github.com/secmon-lab/bonk/pkg/service/worker"
	"github.com/secmon-lab/bonk/pkg/usecase"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdConsole() *cli.Command {
	var user string
	var appCfg config.App
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Name you chat as, switch later with /as <name>",
			Value:       "you",
			Destination: &user,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "console",
		Usage: "Chat with the bot in the terminal. State lives in memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			botCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load bot config")
			}

			out := console.NewMessenger(os.Stdout)
			repo := memory.New()
			jobs := queue.NewMemory()

			opts := []usecase.Option{
				usecase.WithConfig(botCfg),
				usecase.WithMessenger(types.PlatformConsole, out),
			}
			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if llm != nil {
				opts = append(opts, usecase.WithOracle(oracle.New(llm,
					oracle.WithTools(func(room types.RoomID) []gollem.Tool { return core.New(repo, room) }),
				)))
			}
			bot := usecase.NewBot(repo, jobs, opts...)

			jobWorker := worker.NewJobWorker(jobs, bot, worker.WithInterval(200*time.Millisecond))
			if err := jobWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start job worker")
			}
			defer jobWorker.Stop()

			out.Println("bonk console: type messages, /react <message> <emoji> [count], /as <name>, /quit")

			session := console.NewSession(os.Stdin, out,
				func(ctx context.Context, ev *model.MessageEvent) error {
					_, err := bot.HandleMessage(ctx, ev)
					return err
				},
				func(ctx context.Context, ev *model.ReactionEvent) error {
					_, err := bot.HandleReaction(ctx, ev)
					return err
				},
				console.WithUser(user),
			)

			logging.From(ctx).Debug("console session started", "user", user)
			return session.Run(ctx)
		},
	}
}
