package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// weekdayNames maps lowercase weekday words to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// EndOfDay returns 23:59:59 local time on t's calendar date.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// NextWeekday returns the next strictly-future occurrence of the named
// weekday relative to now. When now already falls on the target weekday the
// result is a full 7 days out, never the same day.
func NextWeekday(now time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// resolveDueSpec maps the due-command vocabulary (today, tomorrow,
// "next <weekday>") onto an absolute timestamp. today/tomorrow resolve to
// end of day; weekday forms resolve to end of that day.
func resolveDueSpec(spec string, now time.Time) (time.Time, bool) {
	switch spec {
	case "today":
		return EndOfDay(now), true
	case "tomorrow":
		return EndOfDay(now.AddDate(0, 0, 1)), true
	}
	if name, ok := strings.CutPrefix(spec, "next "); ok {
		if wd, ok := weekdayNames[name]; ok {
			return EndOfDay(NextWeekday(now, wd)), true
		}
	}
	return time.Time{}, false
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ParseClock parses a 12-hour clock expression ("5pm", "5:30 pm", "11").
// Without an explicit meridiem, hours 1-7 are inferred as pm and 8-11 as am,
// matching how people phrase reminders; 12 is noon.
func ParseClock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return hour, minute, true
}

// AtClock places the given clock time on t's calendar date.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// AddSnooze shifts t forward by n units ("days", "weeks", "months"),
// calendar-aware for months.
func AddSnooze(t time.Time, n int, unit string) time.Time {
	switch strings.TrimSuffix(unit, "s") {
	case "day":
		return t.AddDate(0, 0, n)
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	}
	return t
}
