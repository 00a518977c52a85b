package slack

import "strings"

// Slack reacts with short names only
var emojiNames = map[string]string{
	"🔨":  "hammer",
	"📌":  "pushpin",
	"⏰":  "alarm_clock",
	"🎲":  "game_die",
	"🎉":  "tada",
	"🚨":  "rotating_light",
	"🕊️": "dove_of_peace",
	"🎂":  "birthday",
}

// EmojiName converts an emoji to the Slack short name
func EmojiName(emoji string) string {
	if name, ok := emojiNames[emoji]; ok {
		return name
	}
	return strings.Trim(emoji, ":")
}

// baseEmoji strips a skin tone modifier, e.g. "thumbsup::skin-tone-2"
func baseEmoji(name string) string {
	if i := strings.Index(name, "::"); i >= 0 {
		return name[:i]
	}
	return name
}
