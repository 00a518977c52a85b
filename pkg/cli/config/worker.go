package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/bonk/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// Worker holds CLI flags for the job worker pool
type Worker struct {
	interval    time.Duration
	batchSize   int
	concurrency int
}

func (x *Worker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "worker-interval",
			Usage:       "Polling interval of the job queue",
			Category:    "Worker",
			Value:       time.Second,
			Sources:     cli.EnvVars("BONK_WORKER_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.IntFlag{
			Name:        "worker-batch-size",
			Usage:       "Jobs claimed per poll",
			Category:    "Worker",
			Value:       32,
			Sources:     cli.EnvVars("BONK_WORKER_BATCH_SIZE"),
			Destination: &x.batchSize,
		},
		&cli.IntFlag{
			Name:        "worker-concurrency",
			Usage:       "Jobs run at the same time",
			Category:    "Worker",
			Value:       4,
			Sources:     cli.EnvVars("BONK_WORKER_CONCURRENCY"),
			Destination: &x.concurrency,
		},
	}
}

func (x Worker) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("interval", x.interval),
		slog.Int("batch_size", x.batchSize),
		slog.Int("concurrency", x.concurrency),
	)
}

func (x *Worker) Options() []worker.JobWorkerOption {
	return []worker.JobWorkerOption{
		worker.WithInterval(x.interval),
		worker.WithBatchSize(x.batchSize),
		worker.WithConcurrency(x.concurrency),
	}
}
