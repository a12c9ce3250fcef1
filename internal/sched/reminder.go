package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/internal/observability"
	"github.com/valter-silva-au/tasktalk/internal/store"
	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Notifier is the subset of the notification collaborator the checker needs:
// fire-and-forget, best-effort, never required for mutation correctness.
type Notifier interface {
	Notify(title, body string) error
}

// ReminderChecker polls the store for reminders whose fire time has passed
// and marks them notified. The notified flag transitions false->true exactly
// once; firing the notifier is best-effort.
type ReminderChecker struct {
	store    *store.TaskStore
	notifier Notifier
	events   observability.EventLog
	logger   *log.Logger

	minGap time.Duration

	mu        sync.Mutex
	lastCheck time.Time
}

// NewReminderChecker creates a checker with the given debounce gap between
// consecutive checks. events may be nil to disable event logging.
func NewReminderChecker(s *store.TaskStore, n Notifier, events observability.EventLog, logger *log.Logger, minGap time.Duration) *ReminderChecker {
	if logger == nil {
		logger = log.Default()
	}
	return &ReminderChecker{store: s, notifier: n, events: events, logger: logger, minGap: minGap}
}

// Check fires every due, un-notified reminder on non-done, non-archived
// tasks and returns how many fired. Checks closer together than the debounce
// gap are skipped to avoid redundant notification firing.
func (c *ReminderChecker) Check(now time.Time) int {
	c.mu.Lock()
	if !c.lastCheck.IsZero() && now.Sub(c.lastCheck) < c.minGap {
		c.mu.Unlock()
		return 0
	}
	c.lastCheck = now
	c.mu.Unlock()

	type firing struct {
		title string
		at    time.Time
	}
	var fired []firing

	err := c.store.Apply(func(tasks []models.Task) []models.Task {
		for i := range tasks {
			t := &tasks[i]
			if t.Done || t.Status == models.StatusArchived {
				continue
			}
			for j := range t.Reminders {
				r := &t.Reminders[j]
				if r.Notified || r.At.After(now) {
					continue
				}
				r.Notified = true
				fired = append(fired, firing{title: t.Title, at: r.At})
			}
		}
		return tasks
	})
	if err != nil {
		c.logger.Error("reminder check: persisting notified flags", "err", err)
		return 0
	}

	for _, f := range fired {
		if c.events != nil {
			event := observability.Event{
				Type:    observability.EventReminderFired,
				Message: f.title,
				Data:    map[string]any{"at": f.at.Format(time.RFC3339)},
			}
			if err := c.events.Write(event); err != nil {
				c.logger.Warn("event log write failed", "err", err)
			}
		}
		if c.notifier == nil {
			continue
		}
		body := fmt.Sprintf("Reminder set for %s", f.at.Format("Mon Jan 2 15:04"))
		if err := c.notifier.Notify(f.title, body); err != nil {
			c.logger.Warn("reminder notification failed", "task", f.title, "err", err)
		}
	}

	return len(fired)
}

// ForceCheck runs a check immediately, used when the application comes back
// to the foreground. The debounce gap still applies.
func (c *ReminderChecker) ForceCheck() int {
	return c.Check(time.Now())
}

// Run polls at the given interval until the context is cancelled.
func (c *ReminderChecker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := c.Check(now); n > 0 {
				c.logger.Info("reminders fired", "count", n)
			}
		}
	}
}
