package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
)

type (
	MessageFunc  func(ctx context.Context, ev *model.MessageEvent) error
	ReactionFunc func(ctx context.Context, ev *model.ReactionEvent) error
)

// Gateway receives guild messages and reactions over a websocket session
type Gateway struct {
	session    *discordgo.Session
	client     *Client
	onMessage  MessageFunc
	onReaction ReactionFunc
	ctx        context.Context
}

type GatewayOption func(*Gateway)

func WithMessageFunc(f MessageFunc) GatewayOption {
	return func(g *Gateway) {
		g.onMessage = f
	}
}

func WithReactionFunc(f ReactionFunc) GatewayOption {
	return func(g *Gateway) {
		g.onReaction = f
	}
}

// New creates a gateway for a bot token. Nothing connects until Start.
func New(token string, opts ...GatewayOption) (*Gateway, error) {
	if token == "" {
		return nil, goerr.New("Discord bot token is required")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Discord session")
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	g := &Gateway{
		session: s,
		client:  newClient(s),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Client returns the Messenger sharing the gateway session
func (g *Gateway) Client() *Client {
	return g.client
}

// Start opens the websocket. Events are handled with a logger taken from ctx.
func (g *Gateway) Start(ctx context.Context) error {
	g.ctx = ctx
	g.session.AddHandler(g.messageCreate)
	g.session.AddHandler(g.reactionAdd)

	if err := g.session.Open(); err != nil {
		return goerr.Wrap(err, "failed to open Discord session")
	}
	logging.From(ctx).Info("Discord gateway connected")
	return nil
}

func (g *Gateway) Stop() error {
	if err := g.session.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Discord session")
	}
	return nil
}

// discordgo runs every handler on its own goroutine
func (g *Gateway) messageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	ev := NewMessageEvent(m.Message)
	if ev == nil || g.onMessage == nil {
		return
	}
	if err := g.onMessage(g.ctx, ev); err != nil {
		_ = errutil.Handle(g.ctx, err, "failed to handle Discord message")
	}
}

func (g *Gateway) reactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if g.onReaction == nil || r.MessageReaction == nil {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}

	ev, err := g.client.ReactionEvent(g.ctx, r.MessageReaction)
	if err != nil {
		_ = errutil.Handle(g.ctx, err, "failed to read Discord reaction")
		return
	}
	if ev == nil {
		return
	}
	if err := g.onReaction(g.ctx, ev); err != nil {
		_ = errutil.Handle(g.ctx, err, "failed to handle Discord reaction")
	}
}
