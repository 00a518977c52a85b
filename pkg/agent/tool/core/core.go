// Package core holds the read-only tools the ask command may call. Every tool
// is bound to the room the question was asked in.
package core

import (
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/bonk/pkg/domain/interfaces"
	"github.com/secmon-lab/bonk/pkg/domain/types"
)

// New builds the tools for one room
func New(repo interfaces.Repository, room types.RoomID) []gollem.Tool {
	return []gollem.Tool{
		&listBansTool{repo: repo, room: room},
		&getActorTool{repo: repo},
		&getRoomSettingsTool{repo: repo, room: room},
	}
}
