package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
)

// Binder turns raw tokens into typed arguments following a Descriptor
type Binder struct {
	repo       interfaces.Repository
	converters map[TypeTag]any
	now        func() time.Time
}

type BinderOption func(*Binder)

// WithConverter registers a converter for tag. conv must implement at least one of
// ContextConverter, StringConverter, RepositoryConverter or Constructor.
func WithConverter(tag TypeTag, conv any) BinderOption {
	return func(b *Binder) {
		b.converters[tag] = conv
	}
}

func WithBinderClock(now func() time.Time) BinderOption {
	return func(b *Binder) {
		b.now = now
	}
}

func NewBinder(repo interfaces.Repository, opts ...BinderOption) *Binder {
	b := &Binder{
		repo:       repo,
		converters: make(map[TypeTag]any),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	defaults := map[TypeTag]any{
		TypeString:       stringConverter{},
		TypeGreedyString: stringConverter{},
		TypeInt:          intConverter{},
		TypeTime:         timeConverter{now: b.now},
		TypeActor:        actorConverter{now: b.now},
	}
	for tag, conv := range defaults {
		if _, ok := b.converters[tag]; !ok {
			b.converters[tag] = conv
		}
	}
	return b
}

// Bind converts tokens positionally. Bot-only parameters are skipped, a trailing
// greedy string takes every remaining token joined by single spaces, extra tokens
// are ignored and missing ones leave their parameter unbound.
func (b *Binder) Bind(ctx context.Context, desc *Descriptor, tokens []string, cctx *Context) (*Args, error) {
	params := desc.PublicParams()

	if n := len(params); n > 0 && params[n-1].Type == TypeGreedyString && len(tokens) > n-1 {
		joined := strings.Join(tokens[n-1:], " ")
		tokens = append(tokens[:n-1:n-1], joined)
	}

	args := newArgs()
	for i, p := range params {
		if i >= len(tokens) {
			break
		}

		v, err := b.convert(ctx, p, tokens[i], cctx)
		if err != nil {
			return nil, err
		}
		args.set(p.Name, tokens[i], v)
	}

	return args, nil
}

func (b *Binder) convert(ctx context.Context, p Param, raw string, cctx *Context) (any, error) {
	conv, ok := b.converters[p.Type]
	if !ok {
		return nil, goerr.Wrap(ErrUntypifiableParameter, "unknown parameter type",
			goerr.V(ParamKey, p.Name), goerr.V("type", p.Type))
	}

	var v any
	var err error
	switch c := conv.(type) {
	case ContextConverter:
		v, err = c.WithContext(ctx, raw, cctx)
	case StringConverter:
		v, err = c.FromString(raw)
	case RepositoryConverter:
		v, err = c.Load(ctx, b.repo, raw)
	case Constructor:
		v, err = c.Construct(raw)
	default:
		return nil, goerr.Wrap(ErrUntypifiableParameter, "converter implements no strategy",
			goerr.V(ParamKey, p.Name), goerr.V("type", p.Type))
	}

	if err != nil {
		return nil, goerr.Wrap(ErrBinding, "failed to convert argument",
			goerr.V(ParamKey, p.Name), goerr.V(ValueKey, raw), goerr.V("cause", err.Error()))
	}
	return v, nil
}

// IsUserError reports whether err came from what the user typed rather than from the system
func IsUserError(err error) bool {
	return errors.Is(err, ErrCommandNotFound) ||
		errors.Is(err, ErrBinding) ||
		errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrUntypifiableParameter)
}
