package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// Job is a deferred action carried by the task queue. It holds durable
// identifiers only; everything else is re-read when the job fires.
type Job struct {
	ID        types.JobID     `json:"id"`
	Kind      types.JobKind   `json:"kind"`
	Platform  types.Platform  `json:"platform"`
	RoomID    types.RoomID    `json:"room_id"`
	ChannelID types.ChannelID `json:"channel_id"`
	ActorID   types.ActorID   `json:"actor_id"`
	BanID     types.BanID     `json:"ban_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	FireAt    time.Time       `json:"fire_at"`
}

// NewUnbanJob creates the job that announces the end of ban
func NewUnbanJob(platform types.Platform, channel types.ChannelID, ban *Ban, now time.Time, delay time.Duration) *Job {
	return &Job{
		ID:        types.NewJobID(),
		Kind:      types.JobKindUnban,
		Platform:  platform,
		RoomID:    ban.RoomID,
		ChannelID: channel,
		ActorID:   ban.BanneeID,
		BanID:     ban.ID,
		CreatedAt: now,
		FireAt:    now.Add(delay),
	}
}

// NewReminderJob creates the job that reminds actor of text
func NewReminderJob(platform types.Platform, room types.RoomID, channel types.ChannelID, actor types.ActorID, text string, now time.Time, delay time.Duration) *Job {
	return &Job{
		ID:        types.NewJobID(),
		Kind:      types.JobKindReminder,
		Platform:  platform,
		RoomID:    room,
		ChannelID: channel,
		ActorID:   actor,
		Text:      text,
		CreatedAt: now,
		FireAt:    now.Add(delay),
	}
}

// Validate checks the job can be delivered
func (j *Job) Validate() error {
	if j.ID == "" {
		return goerr.Wrap(ErrInvalidJob, "job id is required")
	}
	if !j.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidJob, "unknown job kind", goerr.V("kind", j.Kind))
	}
	if j.RoomID == "" || j.ActorID == "" {
		return goerr.Wrap(ErrInvalidJob, "job requires room and actor", goerr.V("job_id", j.ID))
	}
	if j.Kind == types.JobKindUnban && j.BanID == "" {
		return goerr.Wrap(ErrInvalidJob, "unban job requires ban id", goerr.V("job_id", j.ID))
	}
	return nil
}
