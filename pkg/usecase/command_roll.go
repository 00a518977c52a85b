package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
)

func (x *Bot) cmdRoll(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	hours, err := args.Int("hours")
	if err != nil {
		return err
	}
	if hours < 1 {
		return goerr.Wrap(ErrInvalidArgument, "hours must be positive", goerr.V("hours", hours))
	}

	room := cctx.Room
	now := x.now()
	gambler, err := x.repo.Gambler().GetOrCreate(ctx, model.NewGambler(room.ID, cctx.Author.ID))
	if err != nil {
		return goerr.Wrap(err, "failed to get gambler", goerr.V(ActorIDKey, cctx.Author.ID))
	}
	gambler.Roll(now, room.RollCooldown())

	target := room.DiceTarget
	value := x.intn(target) + 1
	mention := cctx.Author.ID.Mention()

	switch value {
	case 1:
		if err := x.repo.Gambler().Save(ctx, gambler); err != nil {
			return goerr.Wrap(err, "failed to save gambler", goerr.V(ActorIDKey, gambler.ActorID))
		}

		d := time.Duration(hours)*time.Hour + gambler.PenaltyDuration()
		d = min(d, x.cfg.MaxBan)

		text := fmt.Sprintf("🎲 %s rolled a 1 out of %d.", mention, target)
		if gambler.Penalty > 0 {
			text += fmt.Sprintf(" Greed penalty: +%dh.", gambler.Penalty*gambler.Penalty)
		}
		if err := x.reply(ctx, cctx.Event, text); err != nil {
			return err
		}

		tokens := []string{mention, strconv.FormatInt(int64(d/time.Second), 10) + "s", "rolled", "a", "1"}
		botArgs := map[string]any{"banner": model.NewActor(BotActorID, now)}
		return x.dispatcher.Invoke(ctx, cctx, "ban", tokens, botArgs)

	case target:
		gambler.Wins++
		if err := x.repo.Gambler().Save(ctx, gambler); err != nil {
			return goerr.Wrap(err, "failed to save gambler", goerr.V(ActorIDKey, gambler.ActorID))
		}
		fresh, err := x.freshRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		fresh.DiceTarget++
		fresh.UpdatedAt = now
		if err := x.repo.Room().Save(ctx, fresh); err != nil {
			return goerr.Wrap(err, "failed to raise dice target", goerr.V(RoomIDKey, fresh.ID))
		}
		return x.reply(ctx, cctx.Event, fmt.Sprintf("🎉 %s rolled %d and beat the dice! The target is now %d.",
			mention, value, fresh.DiceTarget))

	default:
		if err := x.repo.Gambler().Save(ctx, gambler); err != nil {
			return goerr.Wrap(err, "failed to save gambler", goerr.V(ActorIDKey, gambler.ActorID))
		}
		return x.reply(ctx, cctx.Event, fmt.Sprintf("🎲 %s rolled %d out of %d. Safe.", mention, value, target))
	}
}
