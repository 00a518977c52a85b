package timespec

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

const (
	day  = 24 * time.Hour
	year = 365 * day
)

const maxDuration = time.Duration(math.MaxInt64)

var units = map[rune]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': day,
	'y': year,
}

// compactPattern matches strings made only of number and unit pairs such as "1h30m" or "2 days".
// Those never go through the natural language parser.
var compactPattern = regexp.MustCompile(`(?i)^\s*(\d+\s*[smhdy][a-z]*\s*)+$`)

// ParseLegacy parses a sequence of <integer><unit> pairs with unit one of s, m, h, d and y.
// Characters other than digits between a number and its unit are skipped, so "1hr",
// "1 hour" and "1h" are equal. Pairs are summed.
func ParseLegacy(text string) (time.Duration, error) {
	runes := []rune(strings.ToLower(text))

	var total time.Duration
	found := false

	for i := 0; i < len(runes); {
		if !unicode.IsDigit(runes[i]) {
			i++
			continue
		}

		start := i
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
		n, err := strconv.ParseInt(string(runes[start:i]), 10, 64)
		if err != nil {
			return 0, goerr.Wrap(ErrInvalidTimeFormat, "number out of range", goerr.V("text", text))
		}

		for i < len(runes) && !unicode.IsDigit(runes[i]) {
			if unit, ok := units[runes[i]]; ok {
				if n > int64(maxDuration/unit) || time.Duration(n)*unit > maxDuration-total {
					return 0, goerr.Wrap(ErrInvalidTimeFormat, "duration out of range", goerr.V("text", text))
				}
				total += time.Duration(n) * unit
				found = true
				i++
				break
			}
			i++
		}
	}

	if !found {
		return 0, goerr.Wrap(ErrInvalidTimeFormat, "no time unit found", goerr.V("text", text))
	}
	return total, nil
}
