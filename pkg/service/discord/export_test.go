package discord

// Session is exported for testing
type Session = session

// NewClientWithSession creates a client on a fake session
var NewClientWithSession = newClient
