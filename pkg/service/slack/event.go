package slack

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/slack-go/slack/slackevents"
)

// MessageEvent converts a posted message. Edits, deletions and bot posts return nil.
// The workspace is the room.
func (c *Client) MessageEvent(ctx context.Context, teamID string, ev *slackevents.MessageEvent) *model.MessageEvent {
	if ev.BotID != "" || ev.User == "" {
		return nil
	}
	if ev.SubType != "" && ev.SubType != "thread_broadcast" {
		return nil
	}

	return &model.MessageEvent{
		Platform:   types.PlatformSlack,
		RoomID:     types.RoomID(teamID),
		ChannelID:  types.ChannelID(ev.Channel),
		MessageID:  types.MessageID(ev.TimeStamp),
		AuthorID:   types.ActorID(ev.User),
		AuthorName: c.UserName(ctx, ev.User),
		Text:       ev.Text,
		CreatedAt:  ParseTimestamp(ev.TimeStamp),
	}
}

// ReactionEvent converts a reaction added to a message, looking up the current count.
// Reactions on anything but messages return nil.
func (c *Client) ReactionEvent(ctx context.Context, teamID string, ev *slackevents.ReactionAddedEvent) (*model.ReactionEvent, error) {
	if ev.Item.Type != "message" {
		return nil, nil
	}

	channel := types.ChannelID(ev.Item.Channel)
	message := types.MessageID(ev.Item.Timestamp)
	emoji := baseEmoji(ev.Reaction)

	count, err := c.ReactionCount(ctx, channel, message, emoji)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count reactions")
	}

	return &model.ReactionEvent{
		Platform:         types.PlatformSlack,
		RoomID:           types.RoomID(teamID),
		ChannelID:        channel,
		MessageID:        message,
		MessageAuthorID:  types.ActorID(ev.ItemUser),
		ReactorID:        types.ActorID(ev.User),
		Emoji:            emoji,
		Count:            count,
		MessageCreatedAt: ParseTimestamp(ev.Item.Timestamp),
	}, nil
}

// ParseTimestamp converts a Slack timestamp such as "1700000000.000100". It returns
// the zero time for malformed input.
func ParseTimestamp(ts string) time.Time {
	sec, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}
	}

	var usec int64
	if frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac += strings.Repeat("0", 6-len(frac))
		if usec, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return time.Time{}
		}
	}
	return time.Unix(s, usec*1000).UTC()
}
