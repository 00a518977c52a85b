package chain

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
)

// ReactionGate is the shared predicate of reaction handlers: the emoji matches, the
// count equals the room threshold exactly and the emoji was not handled on the
// message before. Handlers embed it and add Name and Handle.
type ReactionGate struct {
	repo  interfaces.Repository
	emoji []string
	now   func() time.Time
}

// NewReactionGate matches any of emoji. They are aliases of one reaction (e.g. "hammer"
// on Slack and "🔨" on Discord) and share one dedupe record keyed by the first.
func NewReactionGate(repo interfaces.Repository, now func() time.Time, emoji ...string) ReactionGate {
	if now == nil {
		now = time.Now
	}
	return ReactionGate{repo: repo, emoji: emoji, now: now}
}

func (x ReactionGate) Matches(emoji string) bool {
	return slices.Contains(x.emoji, emoji)
}

func (x ReactionGate) key() string {
	if len(x.emoji) == 0 {
		return ""
	}
	return x.emoji[0]
}

func (x ReactionGate) ShouldHandle(ctx context.Context, ev *model.ReactionEvent) (bool, error) {
	if !x.Matches(ev.Emoji) {
		return false, nil
	}

	room, err := x.repo.Room().Get(ctx, ev.RoomID)
	if err != nil {
		return false, goerr.Wrap(err, "failed to get room", goerr.V("room_id", ev.RoomID))
	}
	if room == nil || ev.Count != room.ReactionThreshold {
		return false, nil
	}

	record, err := x.repo.Reaction().Get(ctx, ev.RoomID, ev.MessageID, x.key())
	if err != nil {
		return false, goerr.Wrap(err, "failed to get reaction record",
			goerr.V("room_id", ev.RoomID), goerr.V("message_id", ev.MessageID))
	}
	return record == nil, nil
}

func (x ReactionGate) RecordHandled(ctx context.Context, ev *model.ReactionEvent) error {
	record := &model.ReactionRecord{
		RoomID:    ev.RoomID,
		MessageID: ev.MessageID,
		Emoji:     x.key(),
		HandledAt: x.now(),
	}
	if err := x.repo.Reaction().Put(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to record handled reaction",
			goerr.V("room_id", ev.RoomID), goerr.V("message_id", ev.MessageID))
	}
	return nil
}
