package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
)

func (x *Bot) cmdAsk(ctx context.Context, cctx *dispatch.Context, args *dispatch.Args) error {
	prompt, err := args.String("prompt")
	if err != nil {
		return err
	}
	if x.oracle == nil {
		return goerr.Wrap(ErrOracleDisabled, "ask is disabled")
	}

	answer, err := x.oracle.Ask(ctx, cctx.Room.ID, prompt)
	if err != nil {
		return goerr.Wrap(err, "failed to ask", goerr.V(ActorIDKey, cctx.Author.ID))
	}
	return x.reply(ctx, cctx.Event, answer)
}
