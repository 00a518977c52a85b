package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrNoMessenger  = goerr.New("no messenger for platform")
	ErrRoomNotFound = goerr.New("room not found")

	// User errors are answered with a short reason and the command help
	ErrInvalidArgument  = goerr.New("invalid argument")
	ErrInvalidDuration  = goerr.New("invalid duration")
	ErrPermissionDenied = goerr.New("permission denied")
	ErrOracleDisabled   = goerr.New("no LLM is configured")
)

// Context keys for error values
const (
	RoomIDKey   = "room_id"
	ActorIDKey  = "actor_id"
	BanIDKey    = "ban_id"
	JobIDKey    = "job_id"
	PlatformKey = "platform"
)
