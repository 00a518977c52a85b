package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/repository/memory"
	"github.com/secmon-lab/bonk/pkg/service/outbound"
	"github.com/secmon-lab/bonk/pkg/service/queue"
	"github.com/secmon-lab/bonk/pkg/service/worker"
	"github.com/secmon-lab/bonk/pkg/usecase"
	"golang.org/x/time/rate"
)

var baseTime = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type outMessage struct {
	Channel types.ChannelID
	ReplyTo types.MessageID
	Text    string
}

// fakeMessenger records everything the bot sends
type fakeMessenger struct {
	mu        sync.Mutex
	messages  []outMessage
	reactions []string
	pins      []types.MessageID

	// failSends makes that many following Send calls fail
	failSends int
}

func (m *fakeMessenger) Send(_ context.Context, ch types.ChannelID, text string) (types.MessageID, error) {
	m.mu.Lock()
	if m.failSends > 0 {
		m.failSends--
		m.mu.Unlock()
		return "", errors.New("connection reset")
	}
	m.mu.Unlock()
	return m.add(outMessage{Channel: ch, Text: text}), nil
}

func (m *fakeMessenger) FailSends(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSends = n
}

func (m *fakeMessenger) Reply(_ context.Context, ch types.ChannelID, msg types.MessageID, text string) (types.MessageID, error) {
	return m.add(outMessage{Channel: ch, ReplyTo: msg, Text: text}), nil
}

func (m *fakeMessenger) React(_ context.Context, _ types.ChannelID, _ types.MessageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, emoji)
	return nil
}

func (m *fakeMessenger) Edit(context.Context, types.ChannelID, types.MessageID, string) error {
	return nil
}

func (m *fakeMessenger) Pin(_ context.Context, _ types.ChannelID, msg types.MessageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins = append(m.pins, msg)
	return nil
}

func (m *fakeMessenger) add(msg outMessage) types.MessageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return types.MessageID(fmt.Sprintf("out-%d", len(m.messages)))
}

func (m *fakeMessenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.messages))
	for i, msg := range m.messages {
		texts[i] = msg.Text
	}
	return texts
}

func (m *fakeMessenger) Last() string {
	texts := m.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (m *fakeMessenger) Contains(sub string) bool {
	for _, text := range m.Texts() {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

type fixture struct {
	bot       *usecase.Bot
	repo      *memory.Memory
	queue     *queue.Memory
	messenger *fakeMessenger
	clock     *clock
	worker    *worker.JobWorker
	roll      int
	msgSeq    int
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	return newWrappedFixture(t, nil, opts...)
}

// newWrappedFixture hands the bot wrap(repo) instead of the memory repository
func newWrappedFixture(t *testing.T, wrap func(interfaces.Repository) interfaces.Repository, opts ...usecase.Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:      memory.New(),
		messenger: &fakeMessenger{},
		clock:     &clock{now: baseTime},
	}
	f.queue = queue.NewMemory(queue.WithMemoryClock(f.clock.Now))

	base := []usecase.Option{
		usecase.WithMessenger(types.PlatformConsole, f.messenger),
		usecase.WithSenderOptions(outbound.WithLimiter(rate.NewLimiter(rate.Inf, 0))),
		usecase.WithClock(f.clock.Now),
		usecase.WithRandom(func(n int) int {
			// roll holds the face the next die shows
			if f.roll < 1 || f.roll > n {
				return 0
			}
			return f.roll - 1
		}),
	}
	var repo interfaces.Repository = f.repo
	if wrap != nil {
		repo = wrap(f.repo)
	}
	f.bot = usecase.NewBot(repo, f.queue, append(base, opts...)...)
	f.worker = worker.NewJobWorker(f.queue, f.bot, worker.WithClock(f.clock.Now))
	return f
}

func (f *fixture) say(t *testing.T, author types.ActorID, text string) {
	t.Helper()
	f.msgSeq++
	_, err := f.bot.HandleMessage(context.Background(), &model.MessageEvent{
		Platform:  types.PlatformConsole,
		RoomID:    "R1",
		ChannelID: "C1",
		MessageID: types.MessageID(fmt.Sprintf("in-%d", f.msgSeq)),
		AuthorID:  author,
		Text:      text,
		CreatedAt: f.clock.Now(),
	})
	gt.NoError(t, err).Required()
}

func (f *fixture) runJobs(t *testing.T) int {
	t.Helper()
	n, err := f.worker.RunOnce(context.Background())
	gt.NoError(t, err).Required()
	return n
}

func (f *fixture) currentBan(t *testing.T, bannee types.ActorID) *model.Ban {
	t.Helper()
	ban, err := f.repo.Ban().GetCurrent(context.Background(), "R1", bannee)
	gt.NoError(t, err).Required()
	return ban
}
