package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// TaskQueue delivers jobs at least once, no earlier than their delay
type TaskQueue interface {
	// Schedule stores job to be delivered after delay
	Schedule(ctx context.Context, job *model.Job, delay time.Duration) error

	// Claim returns up to limit jobs due at now. Claimed jobs are hidden from other
	// claims until their lease runs out, and are delivered again unless acked.
	Claim(ctx context.Context, now time.Time, limit int) ([]*model.Job, error)

	// Ack removes a delivered job. Acking an unknown job is not an error.
	Ack(ctx context.Context, id types.JobID) error
}
