package interfaces

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned by Save-style methods when the entity to update does not exist
	ErrNotFound = goerr.New("not found")
)
