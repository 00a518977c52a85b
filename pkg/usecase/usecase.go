package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/model/config"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/service/outbound"
	"github.com/secmon-lab/bonk/pkg/usecase/chain"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

// Bot is the entry point of inbound chat events and scheduled jobs
type Bot struct {
	repo    interfaces.Repository
	queue   interfaces.TaskQueue
	oracle  interfaces.Oracle
	cfg     *config.Bot
	now     func() time.Time
	intn    func(n int) int
	senders map[types.Platform]*outbound.Sender

	messengers    map[types.Platform]interfaces.Messenger
	senderOptions []outbound.Option

	Moderation *Moderation
	dispatcher *dispatch.Dispatcher
	router     *chain.Router
}

type Option func(*Bot)

// WithMessenger enables outbound messages for platform
func WithMessenger(platform types.Platform, m interfaces.Messenger) Option {
	return func(b *Bot) {
		b.messengers[platform] = m
	}
}

// WithSenderOptions configures the chunking and pacing of every messenger
func WithSenderOptions(opts ...outbound.Option) Option {
	return func(b *Bot) {
		b.senderOptions = append(b.senderOptions, opts...)
	}
}

// WithOracle enables the ask command
func WithOracle(oracle interfaces.Oracle) Option {
	return func(b *Bot) {
		b.oracle = oracle
	}
}

func WithConfig(cfg *config.Bot) Option {
	return func(b *Bot) {
		b.cfg = cfg
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithRandom replaces the source of dice rolls and turbo lengths. intn returns a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(b *Bot) {
		b.intn = intn
	}
}

// NewBot wires the handler chain and the command table
func NewBot(repo interfaces.Repository, queue interfaces.TaskQueue, opts ...Option) *Bot {
	b := &Bot{
		repo:       repo,
		queue:      queue,
		cfg:        config.DefaultBot(),
		now:        time.Now,
		intn:       rand.IntN,
		messengers: make(map[types.Platform]interfaces.Messenger),
		senders:    make(map[types.Platform]*outbound.Sender),
	}
	for _, opt := range opts {
		opt(b)
	}

	for platform, m := range b.messengers {
		b.senders[platform] = outbound.New(m, b.senderOptions...)
	}

	b.Moderation = NewModeration(repo, queue, b.senders,
		WithModerationConfig(b.cfg),
		WithModerationClock(b.now),
		WithModerationRandom(b.intn),
	)

	binder := dispatch.NewBinder(repo, dispatch.WithBinderClock(b.now))
	b.dispatcher = dispatch.NewDispatcher(b.commands(), binder, dispatch.WithPrefix(b.cfg.Prefix))

	b.router = chain.New(
		chain.WithMessageHandlers(
			&loggerHandler{bot: b},
			&shameHandler{bot: b},
			&commandHandler{bot: b},
		),
		chain.WithReactionHandlers(
			&banVoteHandler{
				ReactionGate: chain.NewReactionGate(repo, b.now, b.cfg.BanEmoji...),
				bot:          b,
			},
			&pinBoardHandler{
				ReactionGate: chain.NewReactionGate(repo, b.now, b.cfg.PinEmoji...),
				bot:          b,
			},
		),
	)

	return b
}

// Dispatcher exposes the command table, e.g. for help output of gateways
func (x *Bot) Dispatcher() *dispatch.Dispatcher {
	return x.dispatcher
}

// HandleMessage runs ev through the message handlers. The room is created on first contact.
func (x *Bot) HandleMessage(ctx context.Context, ev *model.MessageEvent) (*chain.Report, error) {
	if _, err := x.ensureRoom(ctx, ev.Platform, ev.RoomID); err != nil {
		return nil, err
	}

	ctx = logging.With(ctx, logging.From(ctx).With(
		"platform", ev.Platform,
		"room_id", ev.RoomID,
		"message_id", ev.MessageID,
	))
	report := x.router.RouteMessage(ctx, ev)
	logging.From(ctx).Debug("message routed", "fired", report.Fired, "failed", report.Failed)
	return report, nil
}

// HandleReaction runs ev through the reaction handlers
func (x *Bot) HandleReaction(ctx context.Context, ev *model.ReactionEvent) (*chain.Report, error) {
	if _, err := x.ensureRoom(ctx, ev.Platform, ev.RoomID); err != nil {
		return nil, err
	}

	ctx = logging.With(ctx, logging.From(ctx).With(
		"platform", ev.Platform,
		"room_id", ev.RoomID,
		"message_id", ev.MessageID,
		"emoji", ev.Emoji,
	))
	report := x.router.RouteReaction(ctx, ev)
	logging.From(ctx).Debug("reaction routed", "fired", report.Fired, "failed", report.Failed)
	return report, nil
}

// RunJob executes a scheduled job; it satisfies worker.JobRunner
func (x *Bot) RunJob(ctx context.Context, job *model.Job) error {
	return x.Moderation.RunJob(ctx, job)
}

func (x *Bot) ensureRoom(ctx context.Context, platform types.Platform, id types.RoomID) (*model.Room, error) {
	room, err := x.repo.Room().GetOrCreate(ctx, model.NewRoom(id, platform, x.cfg.Room, x.now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get or create room", goerr.V(RoomIDKey, id))
	}
	return room, nil
}

// freshRoom reads the room again right before it is modified
func (x *Bot) freshRoom(ctx context.Context, id types.RoomID) (*model.Room, error) {
	room, err := x.repo.Room().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get room", goerr.V(RoomIDKey, id))
	}
	if room == nil {
		return nil, goerr.Wrap(ErrRoomNotFound, "room vanished", goerr.V(RoomIDKey, id))
	}
	return room, nil
}

func (x *Bot) sender(platform types.Platform) (*outbound.Sender, error) {
	return senderFor(x.senders, platform)
}

func senderFor(senders map[types.Platform]*outbound.Sender, platform types.Platform) (*outbound.Sender, error) {
	s, ok := senders[platform]
	if !ok {
		return nil, goerr.Wrap(ErrNoMessenger, "platform is not connected", goerr.V(PlatformKey, platform))
	}
	return s, nil
}

func (x *Bot) reply(ctx context.Context, ev *model.MessageEvent, text string) error {
	s, err := x.sender(ev.Platform)
	if err != nil {
		return err
	}
	if _, err := s.QuoteReply(ctx, ev.ChannelID, ev.MessageID, text); err != nil {
		return goerr.Wrap(err, "failed to reply", goerr.V(RoomIDKey, ev.RoomID))
	}
	return nil
}
