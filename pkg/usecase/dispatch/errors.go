package dispatch

import "github.com/m-mizutani/goerr/v2"

var (
	ErrNoPrefix              = goerr.New("text does not start with the command prefix")
	ErrCommandNotFound       = goerr.New("command not found")
	ErrBinding               = goerr.New("failed to bind argument")
	ErrUntypifiableParameter = goerr.New("no conversion for parameter type")
	ErrMissingArgument       = goerr.New("missing argument")
	ErrInvalidDescriptor     = goerr.New("invalid command descriptor")
)

// Context keys for error values
const (
	CommandKey = "command"
	ParamKey   = "param"
	ValueKey   = "value"
)
