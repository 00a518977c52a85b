package timespec

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidTimeFormat       = goerr.New("invalid time format")
	ErrCannotResolveFutureDate = goerr.New("cannot resolve a future date")
)
