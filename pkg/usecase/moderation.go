package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/model/config"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/service/outbound"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

// unbanSlack keeps an unban job from firing before the ban expires
const unbanSlack = time.Second

// Destination is where the outcome of an action is announced
type Destination struct {
	Platform  types.Platform
	RoomID    types.RoomID
	ChannelID types.ChannelID
}

// DestinationOf returns the channel ev was posted in
func DestinationOf(ev *model.MessageEvent) Destination {
	return Destination{Platform: ev.Platform, RoomID: ev.RoomID, ChannelID: ev.ChannelID}
}

type BanRequest struct {
	Destination
	BanneeID types.ActorID
	BannerID types.ActorID
	Reason   string
	Delay    time.Duration

	// TriggerCreatedAt is when the offending message was posted. Zero disables turbo bans.
	TriggerCreatedAt time.Time
}

type BanOutcome struct {
	Ban *model.Ban

	// Existing is set when a longer ban was already running; Ban is then kept as history only
	Existing *model.Ban

	// Job is the scheduled unban, nil when nothing was scheduled
	Job *model.Job
}

// Moderation issues bans and runs the jobs that end them
type Moderation struct {
	repo    interfaces.Repository
	queue   interfaces.TaskQueue
	senders map[types.Platform]*outbound.Sender
	cfg     *config.Bot
	now     func() time.Time
	intn    func(n int) int
}

type ModerationOption func(*Moderation)

func WithModerationConfig(cfg *config.Bot) ModerationOption {
	return func(m *Moderation) {
		m.cfg = cfg
	}
}

func WithModerationClock(now func() time.Time) ModerationOption {
	return func(m *Moderation) {
		m.now = now
	}
}

func WithModerationRandom(intn func(n int) int) ModerationOption {
	return func(m *Moderation) {
		m.intn = intn
	}
}

func NewModeration(repo interfaces.Repository, queue interfaces.TaskQueue, senders map[types.Platform]*outbound.Sender, opts ...ModerationOption) *Moderation {
	m := &Moderation{
		repo:    repo,
		queue:   queue,
		senders: senders,
		cfg:     config.DefaultBot(),
		now:     time.Now,
		intn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssueBan bans req.BanneeID and schedules the announcement of its end. When a ban
// that ends later is already running, the new ban is stored as history and nothing is
// scheduled. Announcement failures are logged and do not fail the ban.
func (x *Moderation) IssueBan(ctx context.Context, req BanRequest) (*BanOutcome, error) {
	room, err := x.repo.Room().Get(ctx, req.RoomID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get room", goerr.V(RoomIDKey, req.RoomID))
	}
	if room == nil {
		return nil, goerr.Wrap(ErrRoomNotFound, "cannot ban in unknown room", goerr.V(RoomIDKey, req.RoomID))
	}
	if req.Delay <= 0 {
		return nil, goerr.Wrap(ErrInvalidDuration, "ban length must be positive", goerr.V("delay", req.Delay))
	}

	now := x.now()
	if _, err := x.repo.Actor().GetOrCreate(ctx, model.NewActor(req.BanneeID, now)); err != nil {
		return nil, goerr.Wrap(err, "failed to get or create bannee", goerr.V(ActorIDKey, req.BanneeID))
	}

	delay := req.Delay
	turbo := x.isTurbo(room, req.TriggerCreatedAt, now)
	if turbo {
		delay = x.turboDelay()
	}

	ban := model.NewBan(room.ID, req.BanneeID, req.BannerID, req.Reason, now, delay)
	ban.Turbo = turbo

	existing, err := x.repo.Ban().GetCurrent(ctx, room.ID, req.BanneeID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get current ban",
			goerr.V(RoomIDKey, room.ID), goerr.V(ActorIDKey, req.BanneeID))
	}

	loc := room.Location()
	if existing != nil && existing.ExpiresAt.After(ban.ExpiresAt) {
		ban.Acknowledge()
		if err := x.repo.Ban().Create(ctx, ban); err != nil {
			return nil, goerr.Wrap(err, "failed to store ban history", goerr.V(BanIDKey, ban.ID))
		}
		x.announce(ctx, req.Destination, fmt.Sprintf("%s is already banned, their ban ends %s.",
			req.BanneeID.Mention(), timespec.Display(now, existing.ExpiresAt, loc)))
		return &BanOutcome{Ban: ban, Existing: existing}, nil
	}

	if err := x.repo.Ban().Create(ctx, ban); err != nil {
		return nil, goerr.Wrap(err, "failed to create ban", goerr.V(BanIDKey, ban.ID))
	}

	job, err := x.ScheduleUnban(ctx, req.Destination, ban, delay+unbanSlack)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("ban issued",
		"ban_id", ban.ID,
		"bannee_id", ban.BanneeID,
		"banner_id", ban.BannerID,
		"expires_at", ban.ExpiresAt,
		"turbo", turbo,
	)

	until := timespec.Display(now, ban.ExpiresAt, loc)
	text := fmt.Sprintf("🔨 %s has been banned. Ban ends %s.", ban.BanneeID.Mention(), until)
	if turbo {
		text = fmt.Sprintf("🚨 TURBO BAN 🚨 %s got bonked right after posting! Ban ends %s.",
			ban.BanneeID.Mention(), until)
	}
	if ban.Reason != "" {
		text += " Reason: " + ban.Reason
	}
	x.announce(ctx, req.Destination, text)

	return &BanOutcome{Ban: ban, Job: job}, nil
}

func (x *Moderation) isTurbo(room *model.Room, triggerAt, now time.Time) bool {
	window := room.TurboWindow()
	if window <= 0 || triggerAt.IsZero() {
		return false
	}
	return now.Sub(triggerAt) <= window
}

func (x *Moderation) turboDelay() time.Duration {
	span := int((x.cfg.TurboMax - x.cfg.TurboMin) / time.Second)
	return x.cfg.TurboMin + time.Duration(x.intn(span+1))*time.Second
}

// Unban voids every current ban of bannee and returns how many were voided
func (x *Moderation) Unban(ctx context.Context, room types.RoomID, bannee, by types.ActorID) (int, error) {
	bans, err := x.repo.Ban().ListCurrent(ctx, room)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list current bans", goerr.V(RoomIDKey, room))
	}

	now := x.now()
	voided := 0
	for _, ban := range bans {
		if ban.BanneeID != bannee {
			continue
		}
		ban.Void(now)
		if err := x.repo.Ban().Save(ctx, ban); err != nil {
			return voided, goerr.Wrap(err, "failed to void ban", goerr.V(BanIDKey, ban.ID))
		}
		voided++
	}

	if voided > 0 {
		logging.From(ctx).Info("ban voided", "room_id", room, "bannee_id", bannee, "by", by, "count", voided)
	}
	return voided, nil
}

// ScheduleUnban enqueues the job announcing the end of ban after delay
func (x *Moderation) ScheduleUnban(ctx context.Context, dest Destination, ban *model.Ban, delay time.Duration) (*model.Job, error) {
	job := model.NewUnbanJob(dest.Platform, dest.ChannelID, ban, x.now(), delay)
	if err := x.queue.Schedule(ctx, job, delay); err != nil {
		return nil, goerr.Wrap(err, "failed to schedule unban", goerr.V(BanIDKey, ban.ID))
	}
	return job, nil
}

// ScheduleReminder enqueues a reminder of text for actor after delay
func (x *Moderation) ScheduleReminder(ctx context.Context, dest Destination, actor types.ActorID, text string, delay time.Duration) (*model.Job, error) {
	job := model.NewReminderJob(dest.Platform, dest.RoomID, dest.ChannelID, actor, text, x.now(), delay)
	if err := x.queue.Schedule(ctx, job, delay); err != nil {
		return nil, goerr.Wrap(err, "failed to schedule reminder", goerr.V(ActorIDKey, actor))
	}
	return job, nil
}

// RunJob executes a delivered job. Jobs are delivered at least once, so every job
// re-reads the state it acts on. An invalid job is dropped.
func (x *Moderation) RunJob(ctx context.Context, job *model.Job) error {
	if err := job.Validate(); err != nil {
		_ = errutil.Handle(ctx, err, "dropping invalid job")
		return nil
	}

	switch job.Kind {
	case types.JobKindUnban:
		return x.runUnban(ctx, job)
	case types.JobKindReminder:
		return x.runReminder(ctx, job)
	}
	return nil
}

func (x *Moderation) runUnban(ctx context.Context, job *model.Job) error {
	logger := logging.From(ctx)

	room, err := x.repo.Room().Get(ctx, job.RoomID)
	if err != nil {
		return goerr.Wrap(err, "failed to get room", goerr.V(RoomIDKey, job.RoomID))
	}
	actor, err := x.repo.Actor().Get(ctx, job.ActorID)
	if err != nil {
		return goerr.Wrap(err, "failed to get actor", goerr.V(ActorIDKey, job.ActorID))
	}
	if room == nil || actor == nil {
		logger.Info("unban target is gone", "room_found", room != nil, "actor_found", actor != nil)
		return nil
	}

	ban, err := x.repo.Ban().Get(ctx, room.ID, job.BanID)
	if err != nil {
		return goerr.Wrap(err, "failed to get ban", goerr.V(BanIDKey, job.BanID))
	}
	if ban == nil || ban.Voided || ban.Acknowledged {
		logger.Debug("ban already settled", "ban_id", job.BanID, "found", ban != nil)
		return nil
	}

	current, err := x.repo.Ban().GetCurrent(ctx, room.ID, actor.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to get current ban", goerr.V(ActorIDKey, actor.ID))
	}
	now := x.now()
	if current == nil {
		logger.Debug("ban already ended", "ban_id", job.BanID)
		return nil
	}
	if now.Before(current.ExpiresAt) {
		logger.Debug("ban was extended", "ban_id", job.BanID, "current_ban_id", current.ID)
		return nil
	}

	// Announce before acknowledging: a failed send leaves the ban current for the redelivery
	s, err := senderFor(x.senders, job.Platform)
	if err != nil {
		return err
	}
	if _, err := s.Send(ctx, job.ChannelID, fmt.Sprintf("🕊️ %s is free again.", actor.ID.Mention())); err != nil {
		return goerr.Wrap(err, "failed to announce unban", goerr.V(BanIDKey, job.BanID))
	}

	bans, err := x.repo.Ban().ListCurrent(ctx, room.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to list current bans", goerr.V(RoomIDKey, room.ID))
	}
	for _, expired := range bans {
		if expired.BanneeID != actor.ID || now.Before(expired.ExpiresAt) {
			continue
		}
		expired.Acknowledge()
		if err := x.repo.Ban().Save(ctx, expired); err != nil {
			return goerr.Wrap(err, "failed to acknowledge ban", goerr.V(BanIDKey, expired.ID))
		}
	}
	logger.Info("ban ended", "ban_id", current.ID, "bannee_id", actor.ID)
	return nil
}

func (x *Moderation) runReminder(ctx context.Context, job *model.Job) error {
	actor, err := x.repo.Actor().Get(ctx, job.ActorID)
	if err != nil {
		return goerr.Wrap(err, "failed to get actor", goerr.V(ActorIDKey, job.ActorID))
	}
	if actor == nil {
		logging.From(ctx).Info("reminder target is gone", "actor_id", job.ActorID)
		return nil
	}

	s, err := senderFor(x.senders, job.Platform)
	if err != nil {
		return err
	}
	if _, err := s.Send(ctx, job.ChannelID, fmt.Sprintf("⏰ %s reminder: %s", actor.ID.Mention(), job.Text)); err != nil {
		return goerr.Wrap(err, "failed to send reminder", goerr.V(JobIDKey, job.ID))
	}
	return nil
}

func (x *Moderation) announce(ctx context.Context, dest Destination, text string) {
	s, err := senderFor(x.senders, dest.Platform)
	if err == nil {
		_, err = s.Send(ctx, dest.ChannelID, text)
	}
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to announce", goerr.V(RoomIDKey, dest.RoomID)), "announcement failed")
	}
}
