package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/cli/config"
	httpctrl "github.com/secmon-lab/bonk/pkg/controller/http"
	"github.com/secmon-lab/bonk/pkg/service/worker"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/secmon-lab/bonk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var runWorker bool
	var botCfgs botConfigs
	var repoCfg config.Repository
	var queueCfg config.Queue
	var workerCfg config.Worker

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("BONK_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "worker",
			Usage:       "Run the job worker in this process",
			Value:       true,
			Sources:     cli.EnvVars("BONK_WORKER"),
			Destination: &runWorker,
		},
	}
	flags = append(flags, botCfgs.flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, queueCfg.Flags()...)
	flags = append(flags, workerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the chat gateways and the Slack webhook server",
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

			p, err := newPlatforms(ctx, &botCfgs, repo, queue)
			if err != nil {
				return err
			}

			var jobWorker *worker.JobWorker
			if runWorker {
				jobWorker = worker.NewJobWorker(queue, p.bot, workerCfg.Options()...)
				if err := jobWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start job worker")
				}
			} else {
				logger.Info("In-process job worker disabled, run `bonk worker` separately")
			}

			if p.discord != nil {
				if err := p.discord.Start(ctx); err != nil {
					return err
				}
				defer func() {
					if err := p.discord.Stop(); err != nil {
						logger.Error("failed to stop discord gateway", "error", err.Error())
					}
				}()
			}

			var httpOpts []httpctrl.Options
			if p.slack != nil {
				handler := httpctrl.NewSlackWebhookHandler(p.slack, p.bot)
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(handler, botCfgs.slack.SigningSecret()))
				logger.Info("Slack webhook handler enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if jobWorker != nil {
					jobWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
