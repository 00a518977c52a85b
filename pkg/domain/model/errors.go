package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidRoomSettings = goerr.New("invalid room settings")
	ErrInvalidJob          = goerr.New("invalid job")
	ErrInvalidBan          = goerr.New("invalid ban")
)
