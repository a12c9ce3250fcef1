package parser

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Property: Parse is total. Every input yields either a grammar match with
// confidence 1 or unknown with confidence 0 carrying the normalized text.
func TestProperty_ParseTotality(t *testing.T) {
	p := newTestParser()

	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.StringMatching(`[ -~]{0,60}`).Draw(rt, "input")
		cmd := p.Parse(input)

		switch cmd.Confidence {
		case 1:
			if cmd.Type == models.CmdUnknown {
				rt.Fatalf("confidence 1 with unknown type for %q", input)
			}
		case 0:
			if cmd.Type != models.CmdUnknown {
				rt.Fatalf("confidence 0 with type %s for %q", cmd.Type, input)
			}
		default:
			rt.Fatalf("confidence %v outside {0,1} for %q", cmd.Confidence, input)
		}
	})
}

// Property: "due next <weekday>" is always strictly in the future, between
// 1 and 7 days out, regardless of the current weekday.
func TestProperty_DueNextWeekdayStrictlyFuture(t *testing.T) {
	weekdays := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	rapid.Check(t, func(rt *rapid.T) {
		dayOffset := rapid.IntRange(0, 6).Draw(rt, "dayOffset")
		name := rapid.SampledFrom(weekdays).Draw(rt, "weekday")

		now := time.Date(2024, 6, 9, 8, 0, 0, 0, time.Local).AddDate(0, 0, dayOffset)
		p := NewAt(func() time.Time { return now })

		cmd := p.Parse("due next " + name + " something")
		if cmd.Type != models.CmdDue || cmd.DueDate == nil {
			rt.Fatalf("expected due command, got %+v", cmd)
		}

		days := int(cmd.DueDate.Sub(EndOfDay(now)).Hours() / 24)
		if days < 1 || days > 7 {
			rt.Fatalf("next %s from %v resolved %d days out", name, now.Weekday(), days)
		}
		if cmd.DueDate.Weekday() != weekdayNames[name] {
			rt.Fatalf("resolved %v, expected %s", cmd.DueDate.Weekday(), name)
		}
	})
}
