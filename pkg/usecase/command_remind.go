package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

func (x *Bot) cmdRemindMe(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	when, err := args.Time("time")
	if err != nil {
		return err
	}
	text, err := args.String("text")
	if err != nil {
		return err
	}
	if when.Delay <= 0 {
		return goerr.Wrap(ErrInvalidDuration, "reminder must be in the future", goerr.V("time", args.Raw("time")))
	}

	if _, err := x.Moderation.ScheduleReminder(ctx, DestinationOf(cctx.Event), cctx.Author.ID, text, when.Delay); err != nil {
		return err
	}
	return x.reply(ctx, cctx.Event, "⏰ I'll remind you "+timespec.Display(x.now(), when.At, cctx.Room.Location())+".")
}

func (x *Bot) cmdHelp(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	if !args.Has("command") {
		return x.reply(ctx, cctx.Event, x.dispatcher.Usage())
	}

	name, err := args.String("command")
	if err != nil {
		return err
	}
	help, err := x.dispatcher.Help(name)
	if err != nil {
		return x.reply(ctx, cctx.Event, fmt.Sprintf("I don't know the command `%s`.\n%s", name, x.dispatcher.Usage()))
	}
	return x.reply(ctx, cctx.Event, help)
}
