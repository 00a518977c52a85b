package usecase

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
)

var channelPattern = regexp.MustCompile(`^<#([A-Za-z0-9]+)(?:\|[^>]*)?>$`)

func (x *Bot) cmdSet(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	key, err := args.String("key")
	if err != nil {
		return err
	}
	value, err := args.String("value")
	if err != nil {
		return err
	}
	if !requireAdmin(cctx) {
		return goerr.Wrap(ErrPermissionDenied, "only admins can change settings", goerr.V(ActorIDKey, cctx.Author.ID))
	}

	room, err := x.freshRoom(ctx, cctx.Room.ID)
	if err != nil {
		return err
	}
	if err := applySetting(room, strings.ToLower(key), strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := room.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidArgument, "setting is out of range",
			goerr.V("key", key), goerr.V("value", value), goerr.V("cause", err.Error()))
	}

	room.UpdatedAt = x.now()
	if err := x.repo.Room().Save(ctx, room); err != nil {
		return goerr.Wrap(err, "failed to save room", goerr.V(RoomIDKey, room.ID))
	}
	return x.reply(ctx, cctx.Event, fmt.Sprintf("⚙️ %s is now %s.", strings.ToLower(key), value))
}

func applySetting(room *model.Room, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, goerr.Wrap(ErrInvalidArgument, "not a number", goerr.V("key", key), goerr.V("value", value))
		}
		return n, nil
	}

	switch key {
	case "target":
		n, err := atoi()
		if err != nil {
			return err
		}
		room.DiceTarget = n
	case "cooldown":
		n, err := atoi()
		if err != nil {
			return err
		}
		room.RollCooldownHours = n
	case "threshold":
		n, err := atoi()
		if err != nil {
			return err
		}
		room.ReactionThreshold = n
	case "turbo":
		n, err := atoi()
		if err != nil {
			return err
		}
		room.TurboWindowSeconds = n
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return goerr.Wrap(ErrInvalidArgument, "unknown timezone", goerr.V("value", value))
		}
		room.Timezone = value
	case "board":
		if m := channelPattern.FindStringSubmatch(value); m != nil {
			value = m[1]
		}
		room.BoardChannelID = types.ChannelID(value)
	case "admin":
		id, ok := dispatch.ParseMention(value)
		if !ok {
			return goerr.Wrap(ErrInvalidArgument, "admin must be a mention", goerr.V("value", value))
		}
		if !slices.Contains(room.Admins, id) {
			room.Admins = append(room.Admins, id)
		}
	default:
		return goerr.Wrap(ErrInvalidArgument, "unknown setting", goerr.V("key", key))
	}
	return nil
}

var birthdayLayouts = []string{"2006-01-02", "01-02", "January 2", "Jan 2", "2 January", "2 Jan"}

func (x *Bot) cmdBirthday(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	raw, err := args.String("date")
	if err != nil {
		return err
	}

	birthday, err := parseBirthday(raw)
	if err != nil {
		return err
	}

	actor := cctx.Author.Copy()
	actor.Birthday = &birthday
	if err := x.repo.Actor().Save(ctx, actor); err != nil {
		return goerr.Wrap(err, "failed to save birthday", goerr.V(ActorIDKey, actor.ID))
	}
	return x.reply(ctx, cctx.Event, "🎂 Got it, your birthday is "+birthday.Format("January 2")+".")
}

func parseBirthday(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, goerr.Wrap(ErrInvalidArgument, "unreadable date", goerr.V("date", raw))
}
