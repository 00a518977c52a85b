package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/service/queue"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Queue holds CLI flags for the deferred job queue
type Queue struct {
	backend       string
	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string
}

func (q *Queue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "queue-backend",
			Usage:       "Job queue backend (redis or memory). memory only works with the in-process worker",
			Category:    "Queue",
			Value:       "redis",
			Sources:     cli.EnvVars("BONK_QUEUE_BACKEND"),
			Destination: &q.backend,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address",
			Category:    "Queue",
			Value:       "localhost:6379",
			Sources:     cli.EnvVars("BONK_REDIS_ADDR"),
			Destination: &q.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Queue",
			Sources:     cli.EnvVars("BONK_REDIS_PASSWORD"),
			Destination: &q.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Queue",
			Sources:     cli.EnvVars("BONK_REDIS_DB"),
			Destination: &q.redisDB,
		},
		&cli.StringFlag{
			Name:        "redis-prefix",
			Usage:       "Key prefix of the job queue",
			Category:    "Queue",
			Value:       "bonk:jobs",
			Sources:     cli.EnvVars("BONK_REDIS_PREFIX"),
			Destination: &q.redisPrefix,
		},
	}
}

func (q Queue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", q.backend),
		slog.String("redis_addr", q.redisAddr),
		slog.Int("redis_db", q.redisDB),
		slog.String("redis_prefix", q.redisPrefix),
		slog.Int("redis_password.len", len(q.redisPassword)),
	)
}

// Configure returns the queue and a func releasing its connection
func (q *Queue) Configure(ctx context.Context) (interfaces.TaskQueue, func(), error) {
	switch q.backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     q.redisAddr,
			Password: q.redisPassword,
			DB:       q.redisDB,
		})
		closer := func() {
			if err := client.Close(); err != nil {
				logging.Default().Error("failed to close redis client", "error", err)
			}
		}
		if err := client.Ping(ctx).Err(); err != nil {
			closer()
			return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", q.redisAddr))
		}

		logging.Default().Info("Using Redis job queue", "addr", q.redisAddr, "prefix", q.redisPrefix)
		return queue.NewRedis(client, queue.WithRedisPrefix(q.redisPrefix)), closer, nil

	case "memory":
		logging.Default().Info("Using in-memory job queue (development mode)")
		return queue.NewMemory(), func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid queue backend", goerr.V(BackendKey, q.backend))
	}
}
