package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/cli/config"
	"github.com/secmon-lab/bonk/pkg/service/worker"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/secmon-lab/bonk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdWorker() *cli.Command {
	var botCfgs botConfigs
	var repoCfg config.Repository
	var queueCfg config.Queue
	var workerCfg config.Worker

	var flags []cli.Flag
	flags = append(flags, botCfgs.flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, queueCfg.Flags()...)
	flags = append(flags, workerCfg.Flags()...)

	return &cli.Command{
		Name:    "worker",
		Aliases: []string{"w"},
		Usage:   "Run deferred unbans and reminders without receiving chat events",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			queue, closeQueue, err := queueCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize job queue")
			}
			defer closeQueue()

			// The discord gateway is not started; its REST client is enough to post
			p, err := newPlatforms(ctx, &botCfgs, repo, queue)
			if err != nil {
				return err
			}

			jobWorker := worker.NewJobWorker(queue, p.bot, workerCfg.Options()...)
			if err := jobWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start job worker")
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			sig := <-sigCh
			logger.Info("Received shutdown signal", "signal", sig)
			jobWorker.Stop()
			return nil
		},
	}
}
