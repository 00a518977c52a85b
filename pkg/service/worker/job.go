package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// JobRunner executes a single deferred job. Returning an error leaves the job
// unacked so the queue delivers it again after the lease.
type JobRunner interface {
	RunJob(ctx context.Context, job *model.Job) error
}

// JobWorker polls the task queue and runs due jobs on a bounded pool of goroutines.
// Several workers, in one process or many, may share a queue.
type JobWorker struct {
	queue       interfaces.TaskQueue
	runner      JobRunner
	interval    time.Duration
	batchSize   int
	concurrency int
	now         func() time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
}

type JobWorkerOption func(*JobWorker)

func WithInterval(d time.Duration) JobWorkerOption {
	return func(w *JobWorker) {
		w.interval = d
	}
}

func WithBatchSize(n int) JobWorkerOption {
	return func(w *JobWorker) {
		w.batchSize = n
	}
}

func WithConcurrency(n int) JobWorkerOption {
	return func(w *JobWorker) {
		w.concurrency = n
	}
}

func WithClock(now func() time.Time) JobWorkerOption {
	return func(w *JobWorker) {
		w.now = now
	}
}

// NewJobWorker creates a worker for the job queue
func NewJobWorker(queue interfaces.TaskQueue, runner JobRunner, opts ...JobWorkerOption) *JobWorker {
	w := &JobWorker{
		queue:       queue,
		runner:      runner,
		interval:    time.Second,
		batchSize:   32,
		concurrency: 4,
		now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins polling in a background goroutine
func (w *JobWorker) Start(ctx context.Context) error {
	logging.Default().Info("Job worker starting",
		"interval", w.interval.String(),
		"batch_size", w.batchSize,
		"concurrency", w.concurrency)

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the running batch to finish
func (w *JobWorker) Stop() {
	logging.Default().Info("Job worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Job worker stopped")
}

func (w *JobWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "job poll failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Job worker context cancelled")
			return
		}
	}
}

// RunOnce claims the due jobs and runs them, returning how many were acked
func (w *JobWorker) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.queue.Claim(ctx, w.now(), w.batchSize)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to claim jobs")
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	acked := make([]bool, len(jobs))
	var eg errgroup.Group
	eg.SetLimit(w.concurrency)

	for i, job := range jobs {
		eg.Go(func() error {
			logger := logging.From(ctx).With("job_id", job.ID, "kind", job.Kind, "room_id", job.RoomID)
			jobCtx := logging.With(ctx, logger)

			if err := w.execute(jobCtx, job); err != nil {
				_ = errutil.Handle(jobCtx, err, "job failed (will be redelivered)")
				return nil
			}
			if err := w.queue.Ack(jobCtx, job.ID); err != nil {
				_ = errutil.Handle(jobCtx, err, "failed to ack job")
				return nil
			}
			acked[i] = true
			logger.Debug("job done")
			return nil
		})
	}
	_ = eg.Wait()

	n := 0
	for _, ok := range acked {
		if ok {
			n++
		}
	}
	return n, nil
}

func (w *JobWorker) execute(ctx context.Context, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic in job", goerr.V("panic", r), goerr.V("job_id", job.ID))
		}
	}()
	return w.runner.RunJob(ctx, job)
}
