package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

const DefaultPrefix = "!"

// Dispatcher parses a prefixed message into a command invocation and runs it
type Dispatcher struct {
	registry *Registry
	binder   *Binder
	prefix   string
}

type DispatcherOption func(*Dispatcher)

func WithPrefix(prefix string) DispatcherOption {
	return func(d *Dispatcher) {
		d.prefix = prefix
	}
}

func NewDispatcher(registry *Registry, binder *Binder, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		binder:   binder,
		prefix:   DefaultPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (x *Dispatcher) Prefix() string {
	return x.prefix
}

// HasPrefix reports whether text is a command invocation
func (x *Dispatcher) HasPrefix(text string) bool {
	return x.prefix != "" && strings.HasPrefix(text, x.prefix)
}

// Split strips the prefix and cuts the rest on single spaces. The first token is the
// lower-cased command name.
func (x *Dispatcher) Split(text string) (string, []string, error) {
	if !x.HasPrefix(text) {
		return "", nil, goerr.Wrap(ErrNoPrefix, "not a command", goerr.V("text", text))
	}

	body := strings.TrimSpace(strings.TrimPrefix(text, x.prefix))
	tokens := strings.Split(body, " ")
	return strings.ToLower(tokens[0]), tokens[1:], nil
}

// Dispatch runs the command in cctx.Event.Text. Every failure is logged with the
// command and its raw arguments, then returned for the caller to report.
func (x *Dispatcher) Dispatch(ctx context.Context, cctx *Context) error {
	name, tokens, err := x.Split(cctx.Event.Text)
	if err != nil {
		return err
	}
	return x.Invoke(ctx, cctx, name, tokens, nil)
}

// Invoke runs a command by name with already-split tokens. botArgs pre-populates
// bot-only parameters and is ignored for any other name.
func (x *Dispatcher) Invoke(ctx context.Context, cctx *Context, name string, tokens []string, botArgs map[string]any) error {
	logger := logging.From(ctx).With(
		"command", name,
		"args", strings.Join(tokens, " "),
	)
	if cctx != nil && cctx.Event != nil {
		logger = logger.With(
			"room_id", cctx.Event.RoomID,
			"channel_id", cctx.Event.ChannelID,
			"author_id", cctx.Event.AuthorID,
		)
	}

	desc, ok := x.registry.Lookup(name)
	if !ok {
		err := goerr.Wrap(ErrCommandNotFound, "unknown command", goerr.V(CommandKey, name))
		logger.Error("command not found")
		return err
	}

	args, err := x.binder.Bind(ctx, desc, tokens, cctx)
	if err != nil {
		logger.Error("failed to bind command arguments", "error", err)
		return goerr.Wrap(err, "bind", goerr.V(CommandKey, desc.Name))
	}

	for _, p := range desc.Params {
		if !p.BotOnly {
			continue
		}
		if v, ok := botArgs[p.Name]; ok {
			args.set(p.Name, "", v)
		}
	}

	if err := desc.Handler(ctx, cctx, args); err != nil {
		logger.Error("command failed", "error", err)
		return goerr.Wrap(err, "command failed", goerr.V(CommandKey, desc.Name))
	}

	logger.Debug("command done")
	return nil
}

// Help renders the usage line and doc of one command
func (x *Dispatcher) Help(name string) (string, error) {
	desc, ok := x.registry.Lookup(strings.TrimPrefix(strings.ToLower(name), x.prefix))
	if !ok {
		return "", goerr.Wrap(ErrCommandNotFound, "unknown command", goerr.V(CommandKey, name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "`%s`", desc.Signature(x.prefix))
	if len(desc.Aliases) > 0 {
		fmt.Fprintf(&b, " (aliases: %s)", strings.Join(desc.Aliases, ", "))
	}
	if desc.Doc != "" {
		b.WriteString("\n" + desc.Doc)
	}
	return b.String(), nil
}

// Usage lists every command signature with the first line of its doc
func (x *Dispatcher) Usage() string {
	lines := []string{"Commands:"}
	for _, desc := range x.registry.Commands() {
		line := "• `" + desc.Signature(x.prefix) + "`"
		if desc.Doc != "" {
			line += " " + strings.SplitN(desc.Doc, "\n", 2)[0]
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
