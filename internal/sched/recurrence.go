package sched

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// RecurrenceEngine regenerates completed recurring tasks as fresh pending
// instances with recomputed due dates and reminders.
type RecurrenceEngine interface {
	NextDue(rule models.RecurrenceRule, due time.Time) (time.Time, bool)
	Regenerate(completed models.Task, now time.Time) (models.Task, bool)
}

type recurrenceEngine struct{}

// NewRecurrenceEngine creates a RecurrenceEngine.
func NewRecurrenceEngine() RecurrenceEngine {
	return &recurrenceEngine{}
}

// NextDue computes the next occurrence's due date from the rule and the
// current due date. ok is false when the rule's end date cuts the series off.
func (e *recurrenceEngine) NextDue(rule models.RecurrenceRule, due time.Time) (time.Time, bool) {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch rule.Type {
	case models.RecurWeekly:
		next = nextWeeklyDue(due, interval, rule.DaysOfWeek)
	case models.RecurMonthly:
		next = due.AddDate(0, interval, 0)
	default:
		// daily, and custom rules expressed as every-N-days.
		next = due.AddDate(0, 0, interval)
	}

	if rule.EndDate != nil && next.After(*rule.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// nextWeeklyDue advances a weekly rule. With a weekday set, the next
// occurrence is the first set weekday strictly after the due date's weekday,
// wrapping to the smallest set weekday the following week; extra intervals
// add whole weeks. Without a set, the rule advances 7*interval days.
func nextWeeklyDue(due time.Time, interval int, daysOfWeek []int) time.Time {
	if len(daysOfWeek) == 0 {
		return due.AddDate(0, 0, 7*interval)
	}

	days := append([]int(nil), daysOfWeek...)
	sort.Ints(days)

	cur := int(due.Weekday())
	delta := 0
	for _, wd := range days {
		if wd > cur {
			delta = wd - cur
			break
		}
	}
	if delta == 0 {
		// Wrap to the smallest weekday in the set next week.
		delta = 7 - cur + days[0]
	}
	return due.AddDate(0, 0, delta+7*(interval-1))
}

// Regenerate builds the next instance of a completed recurring task. The
// original is never touched: the new task gets a fresh identity, pending
// state, re-instantiated subtasks, and recomputed reminders. Relative
// reminders keep their offset from the due date; absolute reminders carry
// their original wall-clock time forward unchanged, which can place them in
// the past so they fire on the next poll (behavior preserved from the
// source system).
func (e *recurrenceEngine) Regenerate(completed models.Task, now time.Time) (models.Task, bool) {
	if completed.Recurring == nil || !completed.Done || completed.DueDate == nil {
		return models.Task{}, false
	}

	nextDue, ok := e.NextDue(*completed.Recurring, *completed.DueDate)
	if !ok {
		return models.Task{}, false
	}

	next := completed.Clone()
	next.ID = uuid.NewString()
	next.SetPending()
	next.CreatedAt = now
	next.DueDate = &nextDue
	next.StartTime = nil

	for i := range next.Subtasks {
		next.Subtasks[i].ID = uuid.NewString()
		next.Subtasks[i].Done = false
	}

	for i := range next.Reminders {
		r := &next.Reminders[i]
		r.ID = uuid.NewString()
		r.Notified = false
		if r.Kind == models.ReminderRelative {
			if r.OffsetMinutes > 0 {
				r.At = nextDue.Add(-time.Duration(r.OffsetMinutes) * time.Minute)
			} else {
				// Preserve the original offset from the old due date.
				r.At = nextDue.Add(r.At.Sub(*completed.DueDate))
			}
		}
	}

	return next, true
}
