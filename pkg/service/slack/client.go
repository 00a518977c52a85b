package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for user name cache
	DefaultCacheTTL = 10 * time.Minute
)

// api is the part of the Slack Web API the bot calls
type api interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	AddReactionContext(ctx context.Context, name string, item slack.ItemRef) error
	AddPinContext(ctx context.Context, channel string, item slack.ItemRef) error
	GetReactionsContext(ctx context.Context, item slack.ItemRef, params slack.GetReactionsParameters) ([]slack.ItemReaction, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

// cacheEntry holds a cached user name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// Client is the Slack Messenger. Message ids are message timestamps.
type Client struct {
	api      api
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	names map[string]cacheEntry
}

var _ interfaces.Messenger = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithCacheTTL sets the TTL for user name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// New creates a Slack client with the provided bot token
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	return newClient(slack.New(token), opts...), nil
}

func newClient(api api, opts ...Option) *Client {
	c := &Client{
		api:      api,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
		names:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Send(ctx context.Context, channel types.ChannelID, text string) (types.MessageID, error) {
	_, ts, err := c.api.PostMessageContext(ctx, string(channel), slack.MsgOptionText(text, false))
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel", channel))
	}
	return types.MessageID(ts), nil
}

// Reply posts text in the thread of message
func (c *Client) Reply(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) (types.MessageID, error) {
	_, ts, err := c.api.PostMessageContext(ctx, string(channel),
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(string(message)),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post reply", goerr.V("channel", channel), goerr.V("ts", message))
	}
	return types.MessageID(ts), nil
}

func (c *Client) React(ctx context.Context, channel types.ChannelID, message types.MessageID, emoji string) error {
	ref := slack.NewRefToMessage(string(channel), string(message))
	if err := c.api.AddReactionContext(ctx, EmojiName(emoji), ref); err != nil {
		return goerr.Wrap(err, "failed to add reaction", goerr.V("channel", channel), goerr.V("emoji", emoji))
	}
	return nil
}

func (c *Client) Edit(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) error {
	if _, _, _, err := c.api.UpdateMessageContext(ctx, string(channel), string(message), slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(err, "failed to update message", goerr.V("channel", channel), goerr.V("ts", message))
	}
	return nil
}

func (c *Client) Pin(ctx context.Context, channel types.ChannelID, message types.MessageID) error {
	ref := slack.NewRefToMessage(string(channel), string(message))
	if err := c.api.AddPinContext(ctx, string(channel), ref); err != nil {
		return goerr.Wrap(err, "failed to pin message", goerr.V("channel", channel), goerr.V("ts", message))
	}
	return nil
}

// ReactionCount returns how many times name was added to the message
func (c *Client) ReactionCount(ctx context.Context, channel types.ChannelID, message types.MessageID, name string) (int, error) {
	ref := slack.NewRefToMessage(string(channel), string(message))
	reactions, err := c.api.GetReactionsContext(ctx, ref, slack.NewGetReactionsParameters())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get reactions", goerr.V("channel", channel), goerr.V("ts", message))
	}
	for _, r := range reactions {
		if baseEmoji(r.Name) == name {
			return r.Count, nil
		}
	}
	return 0, nil
}

// UserName resolves a display name with caching. It returns an empty string when the
// user cannot be resolved.
func (c *Client) UserName(ctx context.Context, userID string) string {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.names[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.name
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return ""
	}

	name := user.Profile.DisplayName
	if name == "" {
		name = user.RealName
	}
	if name == "" {
		name = user.Name
	}

	c.mu.Lock()
	c.names[userID] = cacheEntry{name: name, expiresAt: now.Add(c.cacheTTL)}
	c.mu.Unlock()
	return name
}
