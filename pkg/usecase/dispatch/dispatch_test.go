package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/repository/memory"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
)

var fixedNow = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

type recorder struct {
	calls int
	args  *dispatch.Args
}

func (r *recorder) handle(_ context.Context, _ *dispatch.Context, args *dispatch.Args) error {
	r.calls++
	r.args = args
	return nil
}

func newDispatcher(t *testing.T, descs ...dispatch.Descriptor) *dispatch.Dispatcher {
	t.Helper()
	registry := dispatch.NewRegistry()
	for _, d := range descs {
		gt.NoError(t, registry.Register(d)).Required()
	}
	binder := dispatch.NewBinder(memory.New(), dispatch.WithBinderClock(func() time.Time { return fixedNow }))
	return dispatch.NewDispatcher(registry, binder)
}

func newContext(text string) *dispatch.Context {
	room := model.NewRoom("R1", types.PlatformConsole, model.DefaultRoomSettings(), fixedNow)
	return &dispatch.Context{
		Event: &model.MessageEvent{
			Platform:  types.PlatformConsole,
			RoomID:    "R1",
			ChannelID: "C1",
			MessageID: "M1",
			AuthorID:  "U1",
			Text:      text,
			CreatedAt: fixedNow,
		},
		Room:   room,
		Author: model.NewActor("U1", fixedNow),
	}
}

func TestDispatchGreedyString(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name: "echo",
		Params: []dispatch.Param{
			{Name: "count", Type: dispatch.TypeInt},
			{Name: "text", Type: dispatch.TypeGreedyString},
		},
		Handler: rec.handle,
	})

	ctx := context.Background()
	gt.NoError(t, d.Dispatch(ctx, newContext("!echo 3 hello  big world"))).Required()
	gt.Value(t, rec.calls).Equal(1)

	n, err := rec.args.Int("count")
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(3)

	text, err := rec.args.String("text")
	gt.NoError(t, err).Required()
	gt.Value(t, text).Equal("hello  big world")
}

func TestDispatchGreedyAllTokens(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name:    "say",
		Params:  []dispatch.Param{{Name: "text", Type: dispatch.TypeGreedyString}},
		Handler: rec.handle,
	})

	input := "a b  c d"
	gt.NoError(t, d.Dispatch(context.Background(), newContext("!say "+input))).Required()
	text, err := rec.args.String("text")
	gt.NoError(t, err).Required()
	gt.Value(t, text).Equal(input)
}

func TestDispatchMissingAndExtraTokens(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name: "pair",
		Params: []dispatch.Param{
			{Name: "first", Type: dispatch.TypeString},
			{Name: "second", Type: dispatch.TypeString},
		},
		Handler: rec.handle,
	})
	ctx := context.Background()

	t.Run("missing token leaves parameter unbound", func(t *testing.T) {
		gt.NoError(t, d.Dispatch(ctx, newContext("!pair one"))).Required()
		gt.Bool(t, rec.args.Has("first")).True()
		gt.Bool(t, rec.args.Has("second")).False()

		_, err := rec.args.String("second")
		gt.Error(t, err).Is(dispatch.ErrMissingArgument)
	})

	t.Run("extra tokens are ignored", func(t *testing.T) {
		gt.NoError(t, d.Dispatch(ctx, newContext("!pair one two three"))).Required()
		gt.Value(t, rec.args.Len()).Equal(2)
		second, err := rec.args.String("second")
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal("two")
	})
}

func TestDispatchCaseInsensitiveAndAliases(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name:    "remindme",
		Aliases: []string{"remind"},
		Handler: rec.handle,
	})
	ctx := context.Background()

	gt.NoError(t, d.Dispatch(ctx, newContext("!RemindMe"))).Required()
	gt.NoError(t, d.Dispatch(ctx, newContext("!remind"))).Required()
	gt.Value(t, rec.calls).Equal(2)
}

func TestDispatchCommandNotFound(t *testing.T) {
	d := newDispatcher(t)
	err := d.Dispatch(context.Background(), newContext("!nope"))
	gt.Error(t, err).Is(dispatch.ErrCommandNotFound)
	gt.Bool(t, dispatch.IsUserError(err)).True()

	gt.Error(t, d.Dispatch(context.Background(), newContext("hello"))).Is(dispatch.ErrNoPrefix)
}

func TestDispatchBindingError(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name:    "roll",
		Params:  []dispatch.Param{{Name: "hours", Type: dispatch.TypeInt}},
		Handler: rec.handle,
	})

	err := d.Dispatch(context.Background(), newContext("!roll lots"))
	gt.Error(t, err).Is(dispatch.ErrBinding)
	gt.Value(t, rec.calls).Equal(0)
	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	gt.Value(t, ge.Values()[dispatch.ParamKey]).Equal("hours")
}

func TestDispatchUntypifiableParameter(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name:    "odd",
		Params:  []dispatch.Param{{Name: "x", Type: dispatch.TypeTag("complex")}},
		Handler: rec.handle,
	})

	err := d.Dispatch(context.Background(), newContext("!odd 1+2i"))
	gt.Error(t, err).Is(dispatch.ErrUntypifiableParameter)
	gt.Value(t, rec.calls).Equal(0)
}

func TestDispatchTimeAndActor(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name: "ban",
		Params: []dispatch.Param{
			{Name: "actor", Type: dispatch.TypeActor},
			{Name: "time", Type: dispatch.TypeTime},
			{Name: "reason", Type: dispatch.TypeGreedyString},
		},
		Handler: rec.handle,
	})

	gt.NoError(t, d.Dispatch(context.Background(), newContext("!ban <@U2> 1h being rude"))).Required()

	actor, err := rec.args.Actor("actor")
	gt.NoError(t, err).Required()
	gt.Value(t, actor.ID).Equal(types.ActorID("U2"))

	when, err := rec.args.Time("time")
	gt.NoError(t, err).Required()
	gt.Value(t, when.Delay).Equal(time.Hour)

	reason, err := rec.args.String("reason")
	gt.NoError(t, err).Required()
	gt.Value(t, reason).Equal("being rude")

	t.Run("unreadable time binds as zero delay", func(t *testing.T) {
		gt.NoError(t, d.Dispatch(context.Background(), newContext("!ban <@U2> banana"))).Required()
		when, err := rec.args.Time("time")
		gt.NoError(t, err).Required()
		gt.Value(t, when.Delay).Equal(time.Duration(0))
	})

	t.Run("non-mention actor fails to bind", func(t *testing.T) {
		err := d.Dispatch(context.Background(), newContext("!ban bob 1h"))
		gt.Error(t, err).Is(dispatch.ErrBinding)
	})
}

func TestInvokeBotOnly(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(t, dispatch.Descriptor{
		Name: "ban",
		Doc:  "Ban someone.",
		Params: []dispatch.Param{
			{Name: "actor", Type: dispatch.TypeActor},
			{Name: "banner", Type: dispatch.TypeActor, BotOnly: true},
			{Name: "time", Type: dispatch.TypeTime},
		},
		Handler: rec.handle,
	})
	ctx := context.Background()
	banner := model.NewActor("BOT", fixedNow)

	t.Run("bot-only value comes from Invoke only", func(t *testing.T) {
		err := d.Invoke(ctx, newContext(""), "ban", []string{"<@U2>", "10m"},
			map[string]any{"banner": banner})
		gt.NoError(t, err).Required()

		got, err := rec.args.Actor("banner")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(types.ActorID("BOT"))

		when, err := rec.args.Time("time")
		gt.NoError(t, err).Required()
		gt.Value(t, when.Delay).Equal(10 * time.Minute)
	})

	t.Run("users cannot fill bot-only parameters", func(t *testing.T) {
		gt.NoError(t, d.Dispatch(ctx, newContext("!ban <@U2> 10m <@U3>"))).Required()
		gt.Bool(t, rec.args.Has("banner")).False()
	})

	t.Run("help hides bot-only parameters", func(t *testing.T) {
		help, err := d.Help("ban")
		gt.NoError(t, err).Required()
		gt.String(t, help).Contains("!ban <actor> <time>")
		gt.Bool(t, strings.Contains(help, "banner")).False()
		gt.Bool(t, strings.Contains(d.Usage(), "banner")).False()
	})
}

func TestDispatchHandlerErrorPropagates(t *testing.T) {
	errBoom := errors.New("boom")
	d := newDispatcher(t, dispatch.Descriptor{
		Name: "fail",
		Handler: func(context.Context, *dispatch.Context, *dispatch.Args) error {
			return errBoom
		},
	})

	err := d.Dispatch(context.Background(), newContext("!fail"))
	gt.Error(t, err).Is(errBoom)
	gt.Bool(t, dispatch.IsUserError(err)).False()
}

func TestRegistryValidation(t *testing.T) {
	noop := func(context.Context, *dispatch.Context, *dispatch.Args) error { return nil }

	t.Run("duplicate name", func(t *testing.T) {
		r := dispatch.NewRegistry()
		gt.NoError(t, r.Register(dispatch.Descriptor{Name: "roll", Handler: noop})).Required()
		gt.Error(t, r.Register(dispatch.Descriptor{Name: "ROLL", Handler: noop})).Is(dispatch.ErrInvalidDescriptor)
	})

	t.Run("alias collides with a name", func(t *testing.T) {
		r := dispatch.NewRegistry()
		gt.NoError(t, r.Register(dispatch.Descriptor{Name: "roll", Handler: noop})).Required()
		err := r.Register(dispatch.Descriptor{Name: "dice", Aliases: []string{"roll"}, Handler: noop})
		gt.Error(t, err).Is(dispatch.ErrInvalidDescriptor)
	})

	t.Run("greedy must be last", func(t *testing.T) {
		r := dispatch.NewRegistry()
		err := r.Register(dispatch.Descriptor{
			Name: "bad",
			Params: []dispatch.Param{
				{Name: "text", Type: dispatch.TypeGreedyString},
				{Name: "n", Type: dispatch.TypeInt},
			},
			Handler: noop,
		})
		gt.Error(t, err).Is(dispatch.ErrInvalidDescriptor)
	})

	t.Run("greedy may precede bot-only parameters", func(t *testing.T) {
		r := dispatch.NewRegistry()
		err := r.Register(dispatch.Descriptor{
			Name: "ok",
			Params: []dispatch.Param{
				{Name: "text", Type: dispatch.TypeGreedyString},
				{Name: "by", Type: dispatch.TypeActor, BotOnly: true},
			},
			Handler: noop,
		})
		gt.NoError(t, err).Required()
	})

	t.Run("handler is required", func(t *testing.T) {
		r := dispatch.NewRegistry()
		gt.Error(t, r.Register(dispatch.Descriptor{Name: "nil"})).Is(dispatch.ErrInvalidDescriptor)
	})
}

func TestParseMention(t *testing.T) {
	for raw, want := range map[string]types.ActorID{
		"<@U123>":       "U123",
		"<@!42>":        "42",
		"<@U123|alice>": "U123",
	} {
		got, ok := dispatch.ParseMention(raw)
		gt.Bool(t, ok).True()
		gt.Value(t, got).Equal(want)
	}

	_, ok := dispatch.ParseMention("@alice")
	gt.Bool(t, ok).False()
}
