package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// summarize reports counts and highlights for tasks due in the named period
// ("today", "tomorrow", "week"), plus anything already overdue.
func (d *Dispatcher) summarize(period string) (string, error) {
	now := d.now()
	start, end, label := periodWindow(period, now)

	var due, done, overdueTitles []string
	for _, t := range d.store.Snapshot() {
		if t.Status == models.StatusArchived {
			continue
		}
		if t.DueDate == nil {
			continue
		}
		switch {
		case !t.Done && t.DueDate.Before(now):
			overdueTitles = append(overdueTitles, t.Title)
		case !t.DueDate.Before(start) && t.DueDate.Before(end):
			if t.Done {
				done = append(done, t.Title)
			} else {
				due = append(due, t.Title)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d open, %d done", label, len(due), len(done))
	if len(due) > 0 {
		fmt.Fprintf(&b, ". Open: %s", strings.Join(due, ", "))
	}
	if len(overdueTitles) > 0 {
		fmt.Fprintf(&b, ". Overdue: %s", strings.Join(overdueTitles, ", "))
	}
	if len(due) == 0 && len(done) == 0 && len(overdueTitles) == 0 {
		return fmt.Sprintf("%s: nothing scheduled", label), nil
	}
	return b.String(), nil
}

// periodWindow maps a summarize period onto a half-open interval.
func periodWindow(period string, now time.Time) (start, end time.Time, label string) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), midnight.AddDate(0, 0, 2), "Tomorrow"
	case "week":
		return midnight, midnight.AddDate(0, 0, 7), "This week"
	default:
		return midnight, midnight.AddDate(0, 0, 1), "Today"
	}
}
