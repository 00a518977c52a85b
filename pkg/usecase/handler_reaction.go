package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/usecase/chain"
)

// banVoteHandler bans the author of a message once enough ban emoji pile up on it
type banVoteHandler struct {
	chain.ReactionGate
	bot *Bot
}

func (h *banVoteHandler) Name() string { return "ban-vote" }

func (h *banVoteHandler) Handle(ctx context.Context, ev *model.ReactionEvent) error {
	if ev.MessageAuthorID == "" {
		return nil
	}

	_, err := h.bot.Moderation.IssueBan(ctx, BanRequest{
		Destination: Destination{
			Platform:  ev.Platform,
			RoomID:    ev.RoomID,
			ChannelID: ev.ChannelID,
		},
		BanneeID:         ev.MessageAuthorID,
		BannerID:         ev.ReactorID,
		Reason:           "voted by reactions",
		Delay:            h.bot.cfg.ReactionBan,
		TriggerCreatedAt: ev.MessageCreatedAt,
	})
	return err
}

// pinBoardHandler pins a message once enough pin emoji pile up on it and links it on the board
type pinBoardHandler struct {
	chain.ReactionGate
	bot *Bot
}

func (h *pinBoardHandler) Name() string { return "pin-board" }

func (h *pinBoardHandler) Handle(ctx context.Context, ev *model.ReactionEvent) error {
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
	if err := s.Pin(ctx, ev.ChannelID, ev.MessageID); err != nil {
		return err
	}

	board := room.BoardChannelID
	if board == "" {
		board = ev.ChannelID
	}
	text := fmt.Sprintf("📌 pinned a message by %s in <#%s>", ev.MessageAuthorID.Mention(), ev.ChannelID)
	if _, err := s.Send(ctx, board, text); err != nil {
		return err
	}
	return nil
}
