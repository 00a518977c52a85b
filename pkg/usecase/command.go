package usecase

import (
	"github.com/secmon-lab/bonk/pkg/domain/types"
	"github.com/secmon-lab/bonk/pkg/usecase/dispatch"
)

// BotActorID is recorded as the banner of bans the bot issues on its own
const BotActorID types.ActorID = "bonk"

func (x *Bot) commands() *dispatch.Registry {
	r := dispatch.NewRegistry()
	r.MustRegister(
		dispatch.Descriptor{
			Name: "roll",
			Doc:  "Roll the room dice, betting hours of ban. A 1 bans you, the target raises it.",
			Params: []dispatch.Param{
				{Name: "hours", Type: dispatch.TypeInt},
			},
			Handler: x.cmdRoll,
		},
		dispatch.Descriptor{
			Name: "ban",
			Doc:  "Ban someone for a while, e.g. `1h30m` or `tomorrow at 5pm`.",
			Params: []dispatch.Param{
				{Name: "actor", Type: dispatch.TypeActor},
				{Name: "banner", Type: dispatch.TypeActor, BotOnly: true},
				{Name: "time", Type: dispatch.TypeTime},
				{Name: "reason", Type: dispatch.TypeGreedyString, Optional: true},
			},
			Handler: x.cmdBan,
		},
		dispatch.Descriptor{
			Name: "unban",
			Doc:  "End the ban of someone early.",
			Params: []dispatch.Param{
				{Name: "actor", Type: dispatch.TypeActor},
			},
			Handler: x.cmdUnban,
		},
		dispatch.Descriptor{
			Name: "bans",
			Doc:  "List the bans running in this room.",
			Handler: x.cmdBans,
		},
		dispatch.Descriptor{
			Name:    "remindme",
			Aliases: []string{"remind"},
			Doc:     "Get reminded of something later.",
			Params: []dispatch.Param{
				{Name: "time", Type: dispatch.TypeTime},
				{Name: "text", Type: dispatch.TypeGreedyString},
			},
			Handler: x.cmdRemindMe,
		},
		dispatch.Descriptor{
			Name: "help",
			Doc:  "Show commands, or the usage of one command.",
			Params: []dispatch.Param{
				{Name: "command", Type: dispatch.TypeString, Optional: true},
			},
			Handler: x.cmdHelp,
		},
		dispatch.Descriptor{
			Name: "set",
			Doc:  "Change a room setting: target, cooldown, threshold, turbo, timezone, board or admin.",
			Params: []dispatch.Param{
				{Name: "key", Type: dispatch.TypeString},
				{Name: "value", Type: dispatch.TypeGreedyString},
			},
			Handler: x.cmdSet,
		},
		dispatch.Descriptor{
			Name: "birthday",
			Doc:  "Tell me your birthday, e.g. `1990-04-01` or `April 1`.",
			Params: []dispatch.Param{
				{Name: "date", Type: dispatch.TypeGreedyString},
			},
			Handler: x.cmdBirthday,
		},
		dispatch.Descriptor{
			Name: "ask",
			Doc:  "Ask the bot anything.",
			Params: []dispatch.Param{
				{Name: "prompt", Type: dispatch.TypeGreedyString},
			},
			Handler: x.cmdAsk,
		},
	)
	return r
}

// requireAdmin allows anyone while the room has no admin yet
func requireAdmin(cctx *dispatch.Context) bool {
	return len(cctx.Room.Admins) == 0 || cctx.Room.IsAdmin(cctx.Author.ID)
}
