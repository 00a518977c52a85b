package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bonk/pkg/domain/model"
)

func TestBan(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new ban is in effect until expiry", func(t *testing.T) {
		ban := model.NewBan("R1", "U1", "U2", "spam", now, time.Hour)
		gt.NoError(t, ban.Validate())
		gt.Bool(t, ban.IsCurrent()).True()
		gt.Bool(t, ban.InEffect(now.Add(59*time.Minute))).True()
		gt.Bool(t, ban.InEffect(now.Add(time.Hour))).False()
		gt.Value(t, ban.Duration()).Equal(time.Hour)
	})

	t.Run("voided ban is not current", func(t *testing.T) {
		ban := model.NewBan("R1", "U1", "U2", "", now, time.Hour)
		ban.Void(now.Add(time.Minute))
		gt.Bool(t, ban.IsCurrent()).False()
		gt.Value(t, *ban.VoidedEarlyAt).Equal(now.Add(time.Minute))
	})

	t.Run("acknowledged ban is not current", func(t *testing.T) {
		ban := model.NewBan("R1", "U1", "U2", "", now, time.Hour)
		ban.Acknowledge()
		gt.Bool(t, ban.IsCurrent()).False()
	})

	t.Run("copy detaches voided time", func(t *testing.T) {
		ban := model.NewBan("R1", "U1", "U2", "", now, time.Hour)
		ban.Void(now)
		c := ban.Copy()
		*c.VoidedEarlyAt = now.Add(time.Hour)
		gt.Value(t, *ban.VoidedEarlyAt).Equal(now)
	})

	t.Run("missing bannee is invalid", func(t *testing.T) {
		ban := model.NewBan("R1", "", "U2", "", now, time.Hour)
		gt.Error(t, ban.Validate()).Is(model.ErrInvalidBan)
	})
}
