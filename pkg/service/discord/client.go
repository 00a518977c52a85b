// Package discord connects the bot to Discord through the gateway and the REST API.
// A guild is a room.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// session is the part of *discordgo.Session the client calls
type session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Client is the Discord Messenger
type Client struct {
	session session
}

var _ interfaces.Messenger = &Client{}

func newClient(s session) *Client {
	return &Client{session: s}
}

func (c *Client) Send(ctx context.Context, channel types.ChannelID, text string) (types.MessageID, error) {
	msg, err := c.session.ChannelMessageSend(string(channel), text, discordgo.WithContext(ctx))
	if err != nil {
		return "", goerr.Wrap(err, "failed to send message", goerr.V("channel", channel))
	}
	return types.MessageID(msg.ID), nil
}

// Reply sends text quoting message
func (c *Client) Reply(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) (types.MessageID, error) {
	ref := &discordgo.MessageReference{MessageID: string(message), ChannelID: string(channel)}
	msg, err := c.session.ChannelMessageSendReply(string(channel), text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return "", goerr.Wrap(err, "failed to send reply", goerr.V("channel", channel), goerr.V("message", message))
	}
	return types.MessageID(msg.ID), nil
}

func (c *Client) React(ctx context.Context, channel types.ChannelID, message types.MessageID, emoji string) error {
	if err := c.session.MessageReactionAdd(string(channel), string(message), emoji, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to add reaction", goerr.V("channel", channel), goerr.V("emoji", emoji))
	}
	return nil
}

func (c *Client) Edit(ctx context.Context, channel types.ChannelID, message types.MessageID, text string) error {
	if _, err := c.session.ChannelMessageEdit(string(channel), string(message), text, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to edit message", goerr.V("channel", channel), goerr.V("message", message))
	}
	return nil
}

func (c *Client) Pin(ctx context.Context, channel types.ChannelID, message types.MessageID) error {
	if err := c.session.ChannelMessagePin(string(channel), string(message), discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to pin message", goerr.V("channel", channel), goerr.V("message", message))
	}
	return nil
}

// NewMessageEvent converts a guild message. Bot posts and direct messages return nil.
func NewMessageEvent(m *discordgo.Message) *model.MessageEvent {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return nil
	}

	name := m.Author.GlobalName
	if name == "" {
		name = m.Author.Username
	}

	return &model.MessageEvent{
		Platform:   types.PlatformDiscord,
		RoomID:     types.RoomID(m.GuildID),
		ChannelID:  types.ChannelID(m.ChannelID),
		MessageID:  types.MessageID(m.ID),
		AuthorID:   types.ActorID(m.Author.ID),
		AuthorName: name,
		Text:       m.Content,
		CreatedAt:  m.Timestamp,
	}
}

// ReactionEvent converts an added reaction. The reacted message is fetched for its
// author, its creation time and the current count of the emoji.
func (c *Client) ReactionEvent(ctx context.Context, r *discordgo.MessageReaction) (*model.ReactionEvent, error) {
	if r.GuildID == "" {
		return nil, nil
	}

	msg, err := c.session.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get reacted message",
			goerr.V("channel", r.ChannelID), goerr.V("message", r.MessageID))
	}

	count := 0
	for _, reaction := range msg.Reactions {
		if reaction.Emoji != nil && sameEmoji(reaction.Emoji, &r.Emoji) {
			count = reaction.Count
			break
		}
	}

	ev := &model.ReactionEvent{
		Platform:         types.PlatformDiscord,
		RoomID:           types.RoomID(r.GuildID),
		ChannelID:        types.ChannelID(r.ChannelID),
		MessageID:        types.MessageID(r.MessageID),
		ReactorID:        types.ActorID(r.UserID),
		Emoji:            r.Emoji.Name,
		Count:            count,
		MessageCreatedAt: msg.Timestamp,
	}
	if msg.Author != nil {
		ev.MessageAuthorID = types.ActorID(msg.Author.ID)
	}
	return ev, nil
}

func sameEmoji(a, b *discordgo.Emoji) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Name == b.Name
}
