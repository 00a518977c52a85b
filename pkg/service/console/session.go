package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
)

type (
	MessageFunc  func(ctx context.Context, ev *model.MessageEvent) error
	ReactionFunc func(ctx context.Context, ev *model.ReactionEvent) error
)

type postedMessage struct {
	author    types.ActorID
	createdAt time.Time
}

// Session reads terminal lines and turns them into events.
//
//	any text                      a message from the current user
//	/as <name>                    switch the current user
//	/react <message> <emoji> [n]  react to a message, n overrides the count
//	/quit                         stop
type Session struct {
	in         io.Reader
	out        *Messenger
	onMessage  MessageFunc
	onReaction ReactionFunc
	now        func() time.Time

	user     types.ActorID
	seq      int
	messages map[types.MessageID]postedMessage
	counts   map[string]int
}

type SessionOption func(*Session)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

func WithUser(name string) SessionOption {
	return func(s *Session) {
		s.user = types.ActorID(name)
	}
}

func NewSession(in io.Reader, out *Messenger, onMessage MessageFunc, onReaction ReactionFunc, opts ...SessionOption) *Session {
	s := &Session{
		in:         in,
		out:        out,
		onMessage:  onMessage,
		onReaction: onReaction,
		now:        time.Now,
		user:       "you",
		messages:   make(map[types.MessageID]postedMessage),
		counts:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes lines until EOF, /quit or ctx is done. Event handling errors are
// reported and do not stop the session.
func (s *Session) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}

		if err := s.handleLine(ctx, line); err != nil {
			_ = errutil.Handle(ctx, err, "console line failed")
		}
	}
	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read console input")
	}
	return nil
}

func (s *Session) handleLine(ctx context.Context, line string) error {
	switch {
	case strings.HasPrefix(line, "/as "):
		s.user = types.ActorID(strings.TrimSpace(strings.TrimPrefix(line, "/as ")))
		s.out.Println(fmt.Sprintf("you are now %s", s.user))
		return nil

	case strings.HasPrefix(line, "/react "):
		ev, err := s.reaction(strings.Fields(strings.TrimPrefix(line, "/react ")))
		if err != nil {
			s.out.Println(err.Error())
			return nil
		}
		return s.onReaction(ctx, ev)
	}

	s.seq++
	id := types.MessageID(fmt.Sprintf("m%d", s.seq))
	now := s.now()
	s.messages[id] = postedMessage{author: s.user, createdAt: now}
	s.out.Println(fmt.Sprintf("[%s] %s: %s", id, s.user, line))

	return s.onMessage(ctx, &model.MessageEvent{
		Platform:   types.PlatformConsole,
		RoomID:     RoomID,
		ChannelID:  ChannelID,
		MessageID:  id,
		AuthorID:   s.user,
		AuthorName: string(s.user),
		Text:       line,
		CreatedAt:  now,
	})
}

func (s *Session) reaction(fields []string) (*model.ReactionEvent, error) {
	if len(fields) < 2 {
		return nil, goerr.New("usage: /react <message> <emoji> [count]")
	}

	id := types.MessageID(fields[0])
	posted, ok := s.messages[id]
	if !ok {
		return nil, goerr.New("no such message", goerr.V("message", id))
	}

	emoji := fields[1]
	key := string(id) + "/" + emoji
	s.counts[key]++
	if len(fields) > 2 {
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, goerr.New("count must be a number", goerr.V("count", fields[2]))
		}
		s.counts[key] = n
	}

	return &model.ReactionEvent{
		Platform:         types.PlatformConsole,
		RoomID:           RoomID,
		ChannelID:        ChannelID,
		MessageID:        id,
		MessageAuthorID:  posted.author,
		ReactorID:        s.user,
		Emoji:            emoji,
		Count:            s.counts[key],
		MessageCreatedAt: posted.createdAt,
	}, nil
}
