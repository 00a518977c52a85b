package types

import "fmt"

// Platform is the chat platform an event came from or a message goes to
type Platform string

const (
	PlatformSlack   Platform = "slack"
	PlatformDiscord Platform = "discord"
	PlatformConsole Platform = "console"
)

// IsValid checks if the platform is known
func (p Platform) IsValid() bool {
	switch p {
	case PlatformSlack, PlatformDiscord, PlatformConsole:
		return true
	default:
		return false
	}
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform parses a string into a Platform
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid platform: %s", s)
	}
	return p, nil
}
