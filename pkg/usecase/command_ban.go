package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

func (x *Bot) cmdBan(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	bannee, err := args.Actor("actor")
	if err != nil {
		return err
	}
	when, err := args.Time("time")
	if err != nil {
		return err
	}
	if when.Delay <= 0 {
		return goerr.Wrap(ErrInvalidDuration, "ban length must be positive", goerr.V("time", args.Raw("time")))
	}

	banner := cctx.Author
	if args.Has("banner") {
		if banner, err = args.Actor("banner"); err != nil {
			return err
		}
	}

	var reason string
	if args.Has("reason") {
		reason, _ = args.String("reason")
	}

	_, err = x.Moderation.IssueBan(ctx, BanRequest{
		Destination: DestinationOf(cctx.Event),
		BanneeID:    bannee.ID,
		BannerID:    banner.ID,
		Reason:      reason,
		Delay:       min(when.Delay, x.cfg.MaxBan),
	})
	return err
}

func (x *Bot) cmdUnban(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	bannee, err := args.Actor("actor")
	if err != nil {
		return err
	}
	if !requireAdmin(cctx) {
		return goerr.Wrap(ErrPermissionDenied, "only admins can unban", goerr.V(ActorIDKey, cctx.Author.ID))
	}

	n, err := x.Moderation.Unban(ctx, cctx.Room.ID, bannee.ID, cctx.Author.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return x.reply(ctx, cctx.Event, fmt.Sprintf("%s is not banned.", bannee.ID.Mention()))
	}
	return x.reply(ctx, cctx.Event, fmt.Sprintf("🕊️ %s has been unbanned by %s.",
		bannee.ID.Mention(), cctx.Author.ID.Mention()))
}

func (x *Bot) cmdBans(ctx context.Context, cctx *dispatch.Context, _ *dispatch.Args) error {
	bans, err := x.repo.Ban().ListCurrent(ctx, cctx.Room.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to list bans", goerr.V(RoomIDKey, cctx.Room.ID))
	}

	now := x.now()
	loc := cctx.Room.Location()
	var lines []string
	for _, ban := range bans {
		if !ban.InEffect(now) {
			continue
		}
		line := fmt.Sprintf("• %s until %s", ban.BanneeID.Mention(), timespec.Display(now, ban.ExpiresAt, loc))
		if ban.Turbo {
			line += " 🚨"
		}
		if ban.Reason != "" {
			line += " (" + ban.Reason + ")"
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return x.reply(ctx, cctx.Event, "Nobody is banned right now.")
	}
	return x.reply(ctx, cctx.Event, "Current bans:\n"+strings.Join(lines, "\n"))
}
