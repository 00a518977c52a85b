// Package chain routes inbound events through an ordered list of handlers. Each
// handler is isolated: an error or panic in one is reported and the rest still run.
package chain

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

// MessageHandler reacts to a text message. ShouldHandle may read state but must not change it.
type MessageHandler interface {
	Name() string
	ShouldHandle(ctx context.Context, ev *model.MessageEvent) (bool, error)
	Handle(ctx context.Context, ev *model.MessageEvent) error
}

// ReactionHandler reacts to an emoji reaction. RecordHandled runs after a successful
// Handle so the same reaction is not acted on twice.
type ReactionHandler interface {
	Name() string
	ShouldHandle(ctx context.Context, ev *model.ReactionEvent) (bool, error)
	Handle(ctx context.Context, ev *model.ReactionEvent) error
	RecordHandled(ctx context.Context, ev *model.ReactionEvent) error
}

// Report tells which handlers ran for one event
type Report struct {
	Fired  []string
	Failed []string
}

// OK reports whether no handler failed
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

type Router struct {
	messages  []MessageHandler
	reactions []ReactionHandler
}

type Option func(*Router)

// WithMessageHandlers appends message handlers; they run in the order given
func WithMessageHandlers(handlers ...MessageHandler) Option {
	return func(r *Router) {
		r.messages = append(r.messages, handlers...)
	}
}

// WithReactionHandlers appends reaction handlers; they run in the order given
func WithReactionHandlers(handlers ...ReactionHandler) Option {
	return func(r *Router) {
		r.reactions = append(r.reactions, handlers...)
	}
}

func New(opts ...Option) *Router {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (x *Router) RouteMessage(ctx context.Context, ev *model.MessageEvent) *Report {
	report := &Report{}
	for _, h := range x.messages {
		hctx := logging.With(ctx, logging.From(ctx).With("handler", h.Name()))

		var ok bool
		if err := guard(hctx, h.Name(), "should_handle", func() (err error) {
			ok, err = h.ShouldHandle(hctx, ev)
			return err
		}); err != nil {
			report.Failed = append(report.Failed, h.Name())
			continue
		}
		if !ok {
			continue
		}

		if err := guard(hctx, h.Name(), "handle", func() error {
			return h.Handle(hctx, ev)
		}); err != nil {
			report.Failed = append(report.Failed, h.Name())
			continue
		}
		report.Fired = append(report.Fired, h.Name())
	}
	return report
}

func (x *Router) RouteReaction(ctx context.Context, ev *model.ReactionEvent) *Report {
	report := &Report{}
	for _, h := range x.reactions {
		hctx := logging.With(ctx, logging.From(ctx).With("handler", h.Name()))

		var ok bool
		if err := guard(hctx, h.Name(), "should_handle", func() (err error) {
			ok, err = h.ShouldHandle(hctx, ev)
			return err
		}); err != nil {
			report.Failed = append(report.Failed, h.Name())
			continue
		}
		if !ok {
			continue
		}

		if err := guard(hctx, h.Name(), "handle", func() error {
			return h.Handle(hctx, ev)
		}); err != nil {
			report.Failed = append(report.Failed, h.Name())
			continue
		}

		if err := guard(hctx, h.Name(), "record_handled", func() error {
			return h.RecordHandled(hctx, ev)
		}); err != nil {
			report.Failed = append(report.Failed, h.Name())
			continue
		}
		report.Fired = append(report.Fired, h.Name())
	}
	return report
}

// guard runs fn, turning a panic into an error, and reports any failure
func guard(ctx context.Context, name, phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New(fmt.Sprintf("panic in handler: %v", r))
		}
		if err != nil {
			err = goerr.Wrap(err, "handler failed", goerr.V("handler", name), goerr.V("phase", phase))
			_ = errutil.Handle(ctx, err, "handler failed")
		}
	}()
	return fn()
}
