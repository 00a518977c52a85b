// Package oracle answers the ask command with an LLM agent.
package oracle

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/agent/tool"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

const defaultSystemPrompt = `You are bonk, a moderation bot in a group chat.
Answer in one or two short sentences. Be playful but never rude.
Use the tools when the question is about bans, users or the rules of this room.
Do not use markdown headings.`

var ErrEmptyAnswer = goerr.New("llm returned no text")

// ToolsFunc returns the tools available for a question asked in room
type ToolsFunc func(room types.RoomID) []gollem.Tool

type Oracle struct {
	client       gollem.LLMClient
	systemPrompt string
	tools        ToolsFunc
}

var _ interfaces.Oracle = &Oracle{}

type Option func(*Oracle)

func WithSystemPrompt(prompt string) Option {
	return func(o *Oracle) {
		o.systemPrompt = prompt
	}
}

func WithTools(f ToolsFunc) Option {
	return func(o *Oracle) {
		o.tools = f
	}
}

func New(client gollem.LLMClient, opts ...Option) *Oracle {
	o := &Oracle{
		client:       client,
		systemPrompt: defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Oracle) Ask(ctx context.Context, room types.RoomID, prompt string) (string, error) {
	logger := logging.From(ctx).With("room_id", room)
	ctx = tool.WithUpdate(ctx, func(ctx context.Context, message string) {
		logger.Debug("tool progress", "message", message)
	})

	var tools []gollem.Tool
	if o.tools != nil {
		tools = o.tools(room)
	}
	agent := gollem.New(o.client,
		gollem.WithSystemPrompt(o.systemPrompt),
		gollem.WithTools(tools...),
	)

	resp, err := agent.Execute(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to ask llm", goerr.V("prompt", prompt), goerr.V("room_id", room))
	}

	answer := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if answer == "" {
		return "", goerr.Wrap(ErrEmptyAnswer, "no answer", goerr.V("prompt", prompt))
	}

	logger.Debug("llm answered", "prompt", prompt, "answer", answer)
	return answer, nil
}
