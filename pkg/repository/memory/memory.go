package memory

import (
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
)

// Memory is an in-process Repository for development, the console gateway and tests
type Memory struct {
	room     *roomRepository
	actor    *actorRepository
	ban      *banRepository
	reaction *reactionRepository
	gambler  *gamblerRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		room:     newRoomRepository(),
		actor:    newActorRepository(),
		ban:      newBanRepository(),
		reaction: newReactionRepository(),
		gambler:  newGamblerRepository(),
	}
}

func (m *Memory) Room() interfaces.RoomRepository {
	return m.room
}

func (m *Memory) Actor() interfaces.ActorRepository {
	return m.actor
}

func (m *Memory) Ban() interfaces.BanRepository {
	return m.ban
}

func (m *Memory) Reaction() interfaces.ReactionRepository {
	return m.reaction
}

func (m *Memory) Gambler() interfaces.GamblerRepository {
	return m.gambler
}

func (m *Memory) Close() error {
	return nil
}
