// Package outbound wraps a Messenger with message chunking and send pacing
package outbound

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"golang.org/x/time/rate"
)

const (
	// DefaultChunkSize is the maximum runes sent in one message
	DefaultChunkSize = 3000

	defaultInterval = 500 * time.Millisecond
	defaultBurst    = 3
)

// Sender is what use cases talk to. It is safe for concurrent use.
type Sender struct {
	messenger interfaces.Messenger
	limiter   *rate.Limiter
	chunkSize int
}

type Option func(*Sender)

func WithChunkSize(n int) Option {
	return func(s *Sender) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithLimiter replaces the pacing limiter. Pass rate.NewLimiter(rate.Inf, 0) to disable pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Sender) {
		s.limiter = l
	}
}

func New(messenger interfaces.Messenger, opts ...Option) *Sender {
	s := &Sender{
		messenger: messenger,
		limiter:   rate.NewLimiter(rate.Every(defaultInterval), defaultBurst),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts text to channel, split into chunks. It returns the id of the first chunk.
func (x *Sender) Send(ctx context.Context, channel types.ChannelID, text string) (types.MessageID, error) {
	var first types.MessageID
	for _, chunk := range Chunk(text, x.chunkSize) {
		if err := x.limiter.Wait(ctx); err != nil {
			return first, goerr.Wrap(err, "send cancelled", goerr.V("channel_id", channel))
		}
		id, err := x.messenger.Send(ctx, channel, chunk)
		if err != nil {
			return first, goerr.Wrap(err, "failed to send message", goerr.V("channel_id", channel))
		}
		if first == "" {
			first = id
		}
	}
	return first, nil
}

// QuoteReply replies to message, split into chunks. Every chunk quotes the same message.
func (x *Sender) QuoteReply(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) (types.MessageID, error) {
	var first types.MessageID
	for _, chunk := range Chunk(text, x.chunkSize) {
		if err := x.limiter.Wait(ctx); err != nil {
			return first, goerr.Wrap(err, "reply cancelled", goerr.V("channel_id", channel))
		}
		id, err := x.messenger.Reply(ctx, channel, message, chunk)
		if err != nil {
			return first, goerr.Wrap(err, "failed to reply",
				goerr.V("channel_id", channel), goerr.V("message_id", message))
		}
		if first == "" {
			first = id
		}
	}
	return first, nil
}

func (x *Sender) React(ctx context.Context, channel types.ChannelID, message types.MessageID, emoji string) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "react cancelled")
	}
	if err := x.messenger.React(ctx, channel, message, emoji); err != nil {
		return goerr.Wrap(err, "failed to react",
			goerr.V("channel_id", channel), goerr.V("message_id", message), goerr.V("emoji", emoji))
	}
	return nil
}

func (x *Sender) Edit(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "edit cancelled")
	}
	chunks := Chunk(text, x.chunkSize)
	if err := x.messenger.Edit(ctx, channel, message, chunks[0]); err != nil {
		return goerr.Wrap(err, "failed to edit message",
			goerr.V("channel_id", channel), goerr.V("message_id", message))
	}
	return nil
}

func (x *Sender) Pin(ctx context.Context, channel types.ChannelID, message types.MessageID) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "pin cancelled")
	}
	if err := x.messenger.Pin(ctx, channel, message); err != nil {
		return goerr.Wrap(err, "failed to pin message",
			goerr.V("channel_id", channel), goerr.V("message_id", message))
	}
	return nil
}

// Chunk splits text into pieces of at most size runes, preferring to cut after a
// newline in the second half of a piece. It always returns at least one element.
func Chunk(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	for len(runes) > size {
		cut := size
		for i := size - 1; i >= size/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
