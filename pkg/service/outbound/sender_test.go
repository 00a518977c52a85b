package outbound_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/service/outbound"
	"golang.org/x/time/rate"
)

type sent struct {
	channel types.ChannelID
	replyTo types.MessageID
	text    string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sent
	pins []types.MessageID
}

func (m *fakeMessenger) record(ch types.ChannelID, replyTo types.MessageID, text string) types.MessageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{channel: ch, replyTo: replyTo, text: text})
	return types.MessageID(fmt.Sprintf("m%d", len(m.sent)))
}

func (m *fakeMessenger) Send(_ context.Context, ch types.ChannelID, text string) (types.MessageID, error) {
	return m.record(ch, "", text), nil
}

func (m *fakeMessenger) Reply(_ context.Context, ch types.ChannelID, msg types.MessageID, text string) (types.MessageID, error) {
	return m.record(ch, msg, text), nil
}

func (m *fakeMessenger) React(context.Context, types.ChannelID, types.MessageID, string) error {
	return nil
}

func (m *fakeMessenger) Edit(context.Context, types.ChannelID, types.MessageID, string) error {
	return nil
}

func (m *fakeMessenger) Pin(_ context.Context, _ types.ChannelID, msg types.MessageID) error {
	m.pins = append(m.pins, msg)
	return nil
}

func TestChunk(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		gt.Value(t, outbound.Chunk("hello", 10)).Equal([]string{"hello"})
		gt.Value(t, outbound.Chunk("", 10)).Equal([]string{""})
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		chunks := outbound.Chunk(strings.Repeat("あ", 25), 10)
		gt.Array(t, chunks).Length(3)
		gt.Value(t, chunks[2]).Equal(strings.Repeat("あ", 5))
	})

	t.Run("prefers cutting at a newline", func(t *testing.T) {
		chunks := outbound.Chunk("aaaaaaa\nbbbbbbbbb", 10)
		gt.Value(t, chunks).Equal([]string{"aaaaaaa\n", "bbbbbbbbb"})
	})

	t.Run("chunks rejoin to the input", func(t *testing.T) {
		text := strings.Repeat("line of text\n", 700)
		chunks := outbound.Chunk(text, outbound.DefaultChunkSize)
		for _, c := range chunks {
			gt.Bool(t, len([]rune(c)) <= outbound.DefaultChunkSize).True()
		}
		gt.Value(t, strings.Join(chunks, "")).Equal(text)
	})
}

func TestQuoteReply(t *testing.T) {
	m := &fakeMessenger{}
	s := outbound.New(m, outbound.WithChunkSize(4), outbound.WithLimiter(rate.NewLimiter(rate.Inf, 0)))

	id, err := s.QuoteReply(context.Background(), "C1", "M1", "abcdefghij")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal(types.MessageID("m1"))
	gt.Value(t, m.sent).Equal([]sent{
		{channel: "C1", replyTo: "M1", text: "abcd"},
		{channel: "C1", replyTo: "M1", text: "efgh"},
		{channel: "C1", replyTo: "M1", text: "ij"},
	})
}

func TestSendCancelled(t *testing.T) {
	m := &fakeMessenger{}
	s := outbound.New(m, outbound.WithLimiter(rate.NewLimiter(rate.Every(1e9), 1)))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Send(ctx, "C1", "first")
	gt.NoError(t, err).Required()

	cancel()
	_, err = s.Send(ctx, "C1", "second")
	gt.Value(t, err).NotNil()
	gt.Array(t, m.sent).Length(1)
}

func TestPin(t *testing.T) {
	m := &fakeMessenger{}
	s := outbound.New(m)
	gt.NoError(t, s.Pin(context.Background(), "C1", "M9")).Required()
	gt.Value(t, m.pins).Equal([]types.MessageID{"M9"})
}
