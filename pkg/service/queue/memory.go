package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

type memoryEntry struct {
	job       model.Job
	visibleAt time.Time
}

// Memory is an in-process TaskQueue. Jobs are lost when the process exits.
type Memory struct {
	mu    sync.Mutex
	jobs  map[types.JobID]*memoryEntry
	lease time.Duration
	now   func() time.Time
}

var _ interfaces.TaskQueue = &Memory{}

type MemoryOption func(*Memory)

func WithMemoryLease(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.lease = d
	}
}

// WithMemoryClock replaces the clock used to compute fire times on Schedule
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		jobs:  make(map[types.JobID]*memoryEntry),
		lease: DefaultLease,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Schedule(ctx context.Context, job *model.Job, delay time.Duration) error {
	if err := job.Validate(); err != nil {
		return goerr.Wrap(err, "failed to schedule job")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *job
	copied.FireAt = m.now().Add(delay)
	m.jobs[job.ID] = &memoryEntry{job: copied, visibleAt: copied.FireAt}
	return nil
}

func (m *Memory) Claim(ctx context.Context, now time.Time, limit int) ([]*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*memoryEntry
	for _, e := range m.jobs {
		if !e.visibleAt.After(now) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].visibleAt.Before(due[j].visibleAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	jobs := make([]*model.Job, len(due))
	for i, e := range due {
		e.visibleAt = now.Add(m.lease)
		copied := e.job
		jobs[i] = &copied
	}
	return jobs, nil
}

func (m *Memory) Ack(ctx context.Context, id types.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.jobs, id)
	return nil
}

// Len returns the number of jobs not yet acked
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Jobs returns a snapshot of the jobs not yet acked ordered by fire time
func (m *Memory) Jobs() []*model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*model.Job, 0, len(m.jobs))
	for _, e := range m.jobs {
		copied := e.job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].FireAt.Before(jobs[j].FireAt)
	})
	return jobs
}
