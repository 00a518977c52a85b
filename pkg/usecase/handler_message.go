package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

// loggerHandler keeps the author record fresh and logs every message
type loggerHandler struct {
	bot *Bot
}

func (h *loggerHandler) Name() string { return "logger" }

func (h *loggerHandler) ShouldHandle(context.Context, *model.MessageEvent) (bool, error) {
	return true, nil
}

func (h *loggerHandler) Handle(ctx context.Context, ev *model.MessageEvent) error {
	now := h.bot.now()
	actor, err := h.bot.repo.Actor().GetOrCreate(ctx, model.NewActor(ev.AuthorID, now))
	if err != nil {
		return goerr.Wrap(err, "failed to get or create author", goerr.V(ActorIDKey, ev.AuthorID))
	}

	actor.LastSeenAt = now
	if ev.AuthorName != "" {
		actor.Name = ev.AuthorName
	}
	if err := h.bot.repo.Actor().Save(ctx, actor); err != nil {
		return goerr.Wrap(err, "failed to save author", goerr.V(ActorIDKey, ev.AuthorID))
	}

	logging.From(ctx).Info("message received",
		"channel_id", ev.ChannelID,
		"author_id", ev.AuthorID,
		"length", len(ev.Text),
	)
	return nil
}

// shameHandler marks messages posted by an actor who is still banned
type shameHandler struct {
	bot *Bot
}

func (h *shameHandler) Name() string { return "banned-shame" }

func (h *shameHandler) ShouldHandle(ctx context.Context, ev *model.MessageEvent) (bool, error) {
	ban, err := h.bot.repo.Ban().GetCurrent(ctx, ev.RoomID, ev.AuthorID)
	if err != nil {
		return false, goerr.Wrap(err, "failed to get current ban", goerr.V(ActorIDKey, ev.AuthorID))
	}
	return ban != nil && ban.InEffect(h.bot.now()), nil
}

func (h *shameHandler) Handle(ctx context.Context, ev *model.MessageEvent) error {
	ban, err := h.bot.repo.Ban().GetCurrent(ctx, ev.RoomID, ev.AuthorID)
	if err != nil {
		return goerr.Wrap(err, "failed to get current ban", goerr.V(ActorIDKey, ev.AuthorID))
	}
	now := h.bot.now()
	if ban == nil || !ban.InEffect(now) {
		return nil
	}

	room, err := h.bot.repo.Room().Get(ctx, ev.RoomID)
	if err != nil {
		return goerr.Wrap(err, "failed to get room", goerr.V(RoomIDKey, ev.RoomID))
	}
	if room == nil {
		return nil
	}

	s, err := h.bot.sender(ev.Platform)
	if err != nil {
		return err
	}
	if err := s.React(ctx, ev.ChannelID, ev.MessageID, h.bot.cfg.ShameEmoji); err != nil {
		return err
	}
	return h.bot.reply(ctx, ev, fmt.Sprintf("%s you are banned, your ban ends %s.",
		ev.AuthorID.Mention(), timespec.Display(now, ban.ExpiresAt, room.Location())))
}

// commandHandler runs prefixed messages as commands and answers failures with help
type commandHandler struct {
	bot *Bot
}

func (h *commandHandler) Name() string { return "command" }

func (h *commandHandler) ShouldHandle(_ context.Context, ev *model.MessageEvent) (bool, error) {
	return h.bot.dispatcher.HasPrefix(ev.Text), nil
}

func (h *commandHandler) Handle(ctx context.Context, ev *model.MessageEvent) error {
	cctx, err := h.bot.commandContext(ctx, ev)
	if err != nil {
		return err
	}

	err = h.bot.dispatcher.Dispatch(ctx, cctx)
	if err == nil {
		return nil
	}
	return h.bot.reply(ctx, ev, h.bot.failureText(ev.Text, err))
}

// commandContext reads the room and the author right before a command runs
func (x *Bot) commandContext(ctx context.Context, ev *model.MessageEvent) (*dispatch.Context, error) {
	room, err := x.repo.Room().Get(ctx, ev.RoomID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get room", goerr.V(RoomIDKey, ev.RoomID))
	}
	if room == nil {
		return nil, goerr.Wrap(ErrRoomNotFound, "room vanished", goerr.V(RoomIDKey, ev.RoomID))
	}

	author, err := x.repo.Actor().GetOrCreate(ctx, model.NewActor(ev.AuthorID, x.now()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get or create author", goerr.V(ActorIDKey, ev.AuthorID))
	}

	return &dispatch.Context{Event: ev, Room: room, Author: author}, nil
}

func (x *Bot) failureText(text string, err error) string {
	name, _, splitErr := x.dispatcher.Split(text)
	if splitErr != nil || errors.Is(err, dispatch.ErrCommandNotFound) {
		return fmt.Sprintf("I don't know the command `%s%s`.\n%s", x.dispatcher.Prefix(), name, x.dispatcher.Usage())
	}

	help, helpErr := x.dispatcher.Help(name)
	if helpErr != nil {
		help = x.dispatcher.Usage()
	}
	return failureReason(err) + "\n" + help
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "You are not allowed to do that."
	case errors.Is(err, ErrInvalidDuration):
		return "I couldn't understand that time."
	case errors.Is(err, ErrOracleDisabled):
		return "Asking is not enabled here."
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, dispatch.ErrBinding):
		return "Some argument doesn't look right."
	case errors.Is(err, dispatch.ErrMissingArgument):
		return "Some argument is missing."
	case dispatch.IsUserError(err):
		return "That didn't work."
	default:
		return "Something went wrong."
	}
}
