package timespec

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// maxForwardDays bounds the day by day search for a future reading of an underspecified date
const maxForwardDays = 365

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseNatural reads text as a calendar date or time and returns the nearest instant after now.
// When the first reading is not in the future, the reference day is moved forward one day at
// a time starting from local midnight.
func ParseNatural(text string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "@", " "))
	if text == "" {
		return time.Time{}, goerr.Wrap(ErrInvalidTimeFormat, "empty time")
	}

	local := now.In(loc)
	r, err := parser.Parse(text, local)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse date", goerr.V("text", text))
	}
	if r == nil {
		return time.Time{}, goerr.Wrap(ErrInvalidTimeFormat, "no date found", goerr.V("text", text))
	}
	if r.Time.After(now) {
		return r.Time, nil
	}

	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for i := 1; i <= maxForwardDays; i++ {
		base := midnight.AddDate(0, 0, i)
		r, err := parser.Parse(text, base)
		if err != nil || r == nil {
			continue
		}
		if r.Time.After(now) {
			return r.Time, nil
		}
	}

	return time.Time{}, goerr.Wrap(ErrCannotResolveFutureDate, "no future reading within a year", goerr.V("text", text))
}
