// Package timespec turns a human entered duration or instant into a delay.
package timespec

import (
	"fmt"
	"time"
)

// Result is a parsed time specifier. At is the instant the delay ends at.
type Result struct {
	Delay   time.Duration
	At      time.Time
	Display string
}

// Seconds returns the delay in whole seconds
func (x Result) Seconds() int64 {
	return int64(x.Delay / time.Second)
}

// Parse never fails: an unreadable text yields a zero delay whose display still
// reports the seconds. Callers reject zero or negative delays themselves.
func Parse(text string, now time.Time, loc *time.Location) Result {
	r, err := ParseStrict(text, now, loc)
	if err != nil {
		return Result{At: now, Display: "in 0 seconds"}
	}
	return r
}

// ParseStrict tries the natural language form first and silently falls back to the
// compact form, returning the compact form's error when both fail.
func ParseStrict(text string, now time.Time, loc *time.Location) (Result, error) {
	if loc == nil {
		loc = time.UTC
	}

	if !compactPattern.MatchString(text) {
		if at, err := ParseNatural(text, now, loc); err == nil {
			delay := at.Sub(now).Truncate(time.Second)
			return Result{Delay: delay, At: at, Display: Display(now, at, loc)}, nil
		}
	}

	delay, err := ParseLegacy(text)
	if err != nil {
		return Result{}, err
	}
	at := now.Add(delay)
	return Result{Delay: delay, At: at, Display: Display(now, at, loc)}, nil
}

// Display renders at relative to now: the clock time for spans under a day, the full
// date with zone otherwise.
func Display(now, at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	d := at.Sub(now)
	if d <= 0 {
		return fmt.Sprintf("in %d seconds", int64(d/time.Second))
	}
	if d < day {
		return "at " + at.In(loc).Format("3:04pm")
	}
	return "on " + at.In(loc).Format("Mon Jan 2 2006 at 3:04pm MST")
}
