// Package console is a terminal gateway for trying the bot locally. The whole
// terminal is one room with one channel.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

const (
	RoomID    types.RoomID    = "console"
	ChannelID types.ChannelID = "general"
)

// Messenger prints outbound messages to a writer
type Messenger struct {
	mu  sync.Mutex
	w   io.Writer
	seq int

	bot   *color.Color
	quote *color.Color
	note  *color.Color
}

var _ interfaces.Messenger = &Messenger{}

func NewMessenger(w io.Writer) *Messenger {
	return &Messenger{
		w:     w,
		bot:   color.New(color.FgCyan, color.Bold),
		quote: color.New(color.FgHiBlack),
		note:  color.New(color.FgYellow),
	}
}

func (m *Messenger) nextID() types.MessageID {
	m.seq++
	return types.MessageID(fmt.Sprintf("b%d", m.seq))
}

func (m *Messenger) Send(_ context.Context, channel types.ChannelID, text string) (types.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID()
	fmt.Fprintf(m.w, "%s %s %s\n", m.quote.Sprintf("[%s #%s]", id, channel), m.bot.Sprint("bonk:"), text)
	return id, nil
}

func (m *Messenger) Reply(_ context.Context, channel types.ChannelID, message types.MessageID, text string) (types.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID()
	fmt.Fprintf(m.w, "%s %s %s\n", m.quote.Sprintf("[%s #%s ↪ %s]", id, channel, message), m.bot.Sprint("bonk:"), text)
	return id, nil
}

func (m *Messenger) React(_ context.Context, _ types.ChannelID, message types.MessageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.w, m.note.Sprintf("bonk reacted %s to %s", emoji, message))
	return nil
}

func (m *Messenger) Edit(_ context.Context, _ types.ChannelID, message types.MessageID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, "%s %s\n", m.note.Sprintf("bonk edited %s:", message), text)
	return nil
}

func (m *Messenger) Pin(_ context.Context, _ types.ChannelID, message types.MessageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.w, m.note.Sprintf("bonk pinned %s", message))
	return nil
}

// Println prints a gateway notice
func (m *Messenger) Println(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.w, m.note.Sprint(text))
}
