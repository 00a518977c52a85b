package timespec_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/utils/timespec"
)

func TestParseLegacy(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{name: "seconds", text: "30s", want: 30 * time.Second},
		{name: "minutes", text: "5m", want: 5 * time.Minute},
		{name: "hours", text: "2h", want: 2 * time.Hour},
		{name: "days", text: "3d", want: 72 * time.Hour},
		{name: "years", text: "1y", want: 365 * 24 * time.Hour},
		{name: "sum of units", text: "1h30m", want: 90 * time.Minute},
		{name: "unit words are skipped", text: "1hr", want: time.Hour},
		{name: "space before unit", text: "1 hour", want: time.Hour},
		{name: "long form pairs", text: "2 days 4 hours", want: 52 * time.Hour},
		{name: "upper case", text: "10M", want: 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timespec.ParseLegacy(tt.text)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}

	t.Run("no unit", func(t *testing.T) {
		_, err := timespec.ParseLegacy("42")
		gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
	})

	t.Run("no number", func(t *testing.T) {
		_, err := timespec.ParseLegacy("soon")
		gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
	})

	t.Run("out of range", func(t *testing.T) {
		for _, text := range []string{"300y", "600y", "200y200y", "99999999999999999999s"} {
			_, err := timespec.ParseLegacy(text)
			gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
		}
	})

	t.Run("largest sum fits", func(t *testing.T) {
		got, err := timespec.ParseLegacy("292y")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(292 * 365 * 24 * time.Hour)
	})
}

func TestParse(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)

	t.Run("compact form", func(t *testing.T) {
		r := timespec.Parse("1h30m", now, loc)
		gt.Number(t, r.Seconds()).Equal(5400)
		gt.Value(t, r.At).Equal(now.Add(90 * time.Minute))
		gt.Value(t, r.Display).Equal("at 1:30pm")
	})

	t.Run("long span displays full date", func(t *testing.T) {
		r := timespec.Parse("2d", now, loc)
		gt.Value(t, r.Display).Equal("on Tue Mar 12 2024 at 12:00pm UTC")
	})

	t.Run("unreadable text is a zero delay", func(t *testing.T) {
		r := timespec.Parse("whenever you like", now, loc)
		gt.Value(t, r.Delay).Equal(time.Duration(0))
		gt.Value(t, r.Display).Equal("in 0 seconds")
	})

	t.Run("strict form reports the error", func(t *testing.T) {
		_, err := timespec.ParseStrict("whenever you like", now, loc)
		gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
	})

	t.Run("natural language", func(t *testing.T) {
		r := timespec.Parse("tomorrow at 5pm", now, loc)
		gt.Number(t, r.At.Day()).Equal(11)
		gt.Number(t, r.At.Hour()).Equal(17)
		gt.Bool(t, r.Delay > 24*time.Hour).True()
	})

	t.Run("at sign is a separator", func(t *testing.T) {
		r := timespec.Parse("tomorrow@5pm", now, loc)
		gt.Number(t, r.At.Day()).Equal(11)
		gt.Number(t, r.At.Hour()).Equal(17)
	})

	t.Run("timezone of the room is used", func(t *testing.T) {
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		gt.NoError(t, err).Required()
		r := timespec.Parse("3h", now, tokyo)
		gt.Value(t, r.Display).Equal("at 12:00am")
	})
}

func TestParseNatural(t *testing.T) {
	loc := time.UTC

	t.Run("past clock time moves to the next day", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 18, 0, 0, 0, loc)
		at, err := timespec.ParseNatural("5pm", now, loc)
		gt.NoError(t, err).Required()
		gt.Bool(t, at.After(now)).True()
		gt.Number(t, at.Day()).Equal(11)
		gt.Number(t, at.Hour()).Equal(17)
	})

	t.Run("future clock time stays today", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
		at, err := timespec.ParseNatural("5pm", now, loc)
		gt.NoError(t, err).Required()
		gt.Number(t, at.Day()).Equal(10)
	})

	t.Run("no date in text", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
		_, err := timespec.ParseNatural("banana", now, loc)
		gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
	})

	t.Run("fixed date in the past cannot be resolved", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
		_, err := timespec.ParseNatural("1/1/2020", now, loc)
		gt.Error(t, err).Is(timespec.ErrCannotResolveFutureDate)
	})
}

func TestParseOutOfRangeIsZeroDelay(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	r := timespec.Parse("600y", now, time.UTC)
	gt.Value(t, r.Delay).Equal(time.Duration(0))
	gt.Value(t, r.Display).Equal("in 0 seconds")

	_, err := timespec.ParseStrict("300y", now, time.UTC)
	gt.Error(t, err).Is(timespec.ErrInvalidTimeFormat)
}
