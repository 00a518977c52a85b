package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// claimScript moves due job ids forward by the lease and returns their payloads.
// KEYS[1] due set, KEYS[2] payload hash. ARGV[1] now ms, ARGV[2] limit, ARGV[3] lease end ms.
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
local out = {}
for _, id in ipairs(ids) do
  local payload = redis.call('HGET', KEYS[2], id)
  if payload then
    redis.call('ZADD', KEYS[1], ARGV[3], id)
    table.insert(out, payload)
  else
    redis.call('ZREM', KEYS[1], id)
  end
end
return out
`)

// Redis is a TaskQueue on a sorted set of job ids scored by visibility time and a
// hash of JSON payloads. Claims are atomic across workers.
type Redis struct {
	client redis.UniversalClient
	prefix string
	lease  time.Duration
	now    func() time.Time
}

var _ interfaces.TaskQueue = &Redis{}

type RedisOption func(*Redis)

func WithRedisLease(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.lease = d
	}
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisClock replaces the clock used to compute fire times on Schedule
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *Redis) {
		r.now = now
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "bonk:jobs",
		lease:  DefaultLease,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) dueKey() string     { return r.prefix + ":due" }
func (r *Redis) payloadKey() string { return r.prefix + ":payload" }

func (r *Redis) Schedule(ctx context.Context, job *model.Job, delay time.Duration) error {
	if err := job.Validate(); err != nil {
		return goerr.Wrap(err, "failed to schedule job")
	}

	copied := *job
	copied.FireAt = r.now().Add(delay)
	raw, err := json.Marshal(&copied)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal job", goerr.V("job_id", job.ID))
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.payloadKey(), string(job.ID), raw)
		pipe.ZAdd(ctx, r.dueKey(), redis.Z{
			Score:  float64(copied.FireAt.UnixMilli()),
			Member: string(job.ID),
		})
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to schedule job", goerr.V("job_id", job.ID), goerr.V("kind", job.Kind))
	}
	return nil
}

func (r *Redis) Claim(ctx context.Context, now time.Time, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 100
	}

	payloads, err := claimScript.Run(ctx, r.client,
		[]string{r.dueKey(), r.payloadKey()},
		now.UnixMilli(), limit, now.Add(r.lease).UnixMilli(),
	).StringSlice()
	if err != nil && err != redis.Nil {
		return nil, goerr.Wrap(err, "failed to claim jobs")
	}

	jobs := make([]*model.Job, 0, len(payloads))
	for _, p := range payloads {
		var job model.Job
		if err := json.Unmarshal([]byte(p), &job); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal job", goerr.V("payload", p))
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (r *Redis) Ack(ctx context.Context, id types.JobID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, r.dueKey(), string(id))
		pipe.HDel(ctx, r.payloadKey(), string(id))
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to ack job", goerr.V("job_id", id))
	}
	return nil
}
