package discord_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/service/discord"
)

type fakeSession struct {
	sent      []string
	replies   []*discordgo.MessageReference
	reactions []string
	pins      []string
	message   *discordgo.Message
}

func (f *fakeSession) ChannelMessageSend(_ string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "900"}, nil
}

func (f *fakeSession) ChannelMessageSendReply(_ string, content string, ref *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	f.replies = append(f.replies, ref)
	return &discordgo.Message{ID: "901"}, nil
}

func (f *fakeSession) ChannelMessageEdit(_, messageID, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID}, nil
}

func (f *fakeSession) ChannelMessagePin(_, messageID string, _ ...discordgo.RequestOption) error {
	f.pins = append(f.pins, messageID)
	return nil
}

func (f *fakeSession) MessageReactionAdd(_, _, emojiID string, _ ...discordgo.RequestOption) error {
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) ChannelMessage(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.message, nil
}

var _ discord.Session = &fakeSession{}

func TestMessenger(t *testing.T) {
	ctx := context.Background()
	s := &fakeSession{}
	c := discord.NewClientWithSession(s)

	id, err := c.Send(ctx, "C1", "hello")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal(types.MessageID("900"))

	id, err = c.Reply(ctx, "C1", "42", "quoted")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal(types.MessageID("901"))
	gt.Value(t, s.replies[0].MessageID).Equal("42")

	gt.NoError(t, c.React(ctx, "C1", "42", "🔨")).Required()
	gt.NoError(t, c.Pin(ctx, "C1", "42")).Required()
	gt.Value(t, s.reactions).Equal([]string{"🔨"})
	gt.Value(t, s.pins).Equal([]string{"42"})
}

func TestNewMessageEvent(t *testing.T) {
	posted := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	ev := discord.NewMessageEvent(&discordgo.Message{
		ID:        "42",
		GuildID:   "G1",
		ChannelID: "C1",
		Content:   "!help",
		Timestamp: posted,
		Author:    &discordgo.User{ID: "U1", Username: "alice", GlobalName: "Alice"},
	})
	gt.Value(t, ev).NotNil()
	gt.Value(t, ev.Platform).Equal(types.PlatformDiscord)
	gt.Value(t, ev.RoomID).Equal(types.RoomID("G1"))
	gt.Value(t, ev.AuthorName).Equal("Alice")
	gt.Value(t, ev.CreatedAt).Equal(posted)

	t.Run("bots and direct messages are skipped", func(t *testing.T) {
		gt.Value(t, discord.NewMessageEvent(&discordgo.Message{GuildID: "G1", Author: &discordgo.User{ID: "B", Bot: true}})).Nil()
		gt.Value(t, discord.NewMessageEvent(&discordgo.Message{Author: &discordgo.User{ID: "U1"}})).Nil()
	})
}

func TestReactionEvent(t *testing.T) {
	posted := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	s := &fakeSession{message: &discordgo.Message{
		ID:        "42",
		Timestamp: posted,
		Author:    &discordgo.User{ID: "U1"},
		Reactions: []*discordgo.MessageReactions{
			{Count: 7, Emoji: &discordgo.Emoji{Name: "👍"}},
			{Count: 3, Emoji: &discordgo.Emoji{Name: "🔨"}},
		},
	}}
	c := discord.NewClientWithSession(s)

	ev, err := c.ReactionEvent(context.Background(), &discordgo.MessageReaction{
		UserID:    "U2",
		MessageID: "42",
		ChannelID: "C1",
		GuildID:   "G1",
		Emoji:     discordgo.Emoji{Name: "🔨"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, ev.Count).Equal(3)
	gt.Value(t, ev.Emoji).Equal("🔨")
	gt.Value(t, ev.MessageAuthorID).Equal(types.ActorID("U1"))
	gt.Value(t, ev.MessageCreatedAt).Equal(posted)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := discord.New("")
	gt.Value(t, err).NotNil()

	g, err := discord.New("token")
	gt.NoError(t, err).Required()
	gt.Value(t, g.Client()).NotNil()
}
