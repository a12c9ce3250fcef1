package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusArchived  TaskStatus = "archived"
)

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecurrenceType identifies how a recurring task repeats.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurCustom  RecurrenceType = "custom"
)

// RecurrenceRule describes the repeat specification attached to a task.
// DaysOfWeek uses weekday integers 0-6 (0 = Sunday) and is only meaningful
// for weekly rules.
type RecurrenceRule struct {
	Type       RecurrenceType `json:"type"`
	Interval   int            `json:"interval"`
	DaysOfWeek []int          `json:"daysOfWeek,omitempty"`
	EndDate    *time.Time     `json:"endDate,omitempty"`
}

// ReminderKind distinguishes reminders fixed to a wall-clock time from
// reminders expressed as an offset before the task's due date.
type ReminderKind string

const (
	ReminderAbsolute ReminderKind = "absolute"
	ReminderRelative ReminderKind = "relative"
)

// Reminder is a scheduled user-visible alert owned by a single task.
// Notified transitions false->true exactly once and is never reset on the
// same reminder instance.
type Reminder struct {
	ID            string       `json:"id"`
	At            time.Time    `json:"at"`
	Notified      bool         `json:"notified"`
	Kind          ReminderKind `json:"kind"`
	OffsetMinutes int          `json:"offsetMinutes,omitempty"`
}

// Subtask is an ordered child item owned exclusively by its task.
type Subtask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Project is a lightweight category tasks can reference by ID.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is the central entity. The legacy single Tag field coexists with the
// Tags list in persisted data; the store unions them at load time, after
// which Tags is the sole source of truth. Done is semantically redundant
// with Status == completed; mutations go through SetCompleted/SetPending to
// keep the pair consistent.
type Task struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Notes           string          `json:"notes,omitempty"`
	Tag             string          `json:"tag,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	Priority        Priority        `json:"priority,omitempty"`
	ProjectID       string          `json:"projectId,omitempty"`
	Status          TaskStatus      `json:"status"`
	Done            bool            `json:"done"`
	CreatedAt       time.Time       `json:"createdAt"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	StartTime       *time.Time      `json:"startTime,omitempty"`
	DurationMinutes int             `json:"durationMinutes,omitempty"`
	Subtasks        []Subtask       `json:"subtasks,omitempty"`
	Recurring       *RecurrenceRule `json:"recurring,omitempty"`
	Reminders       []Reminder      `json:"reminders,omitempty"`
}

// DefaultDurationMinutes is assumed when a task has no explicit duration.
const DefaultDurationMinutes = 60

// AllTags returns the union of the legacy single tag and the tag list,
// without duplicates, preserving order (legacy tag first).
func (t *Task) AllTags() []string {
	seen := make(map[string]struct{}, len(t.Tags)+1)
	var out []string
	if t.Tag != "" {
		seen[t.Tag] = struct{}{}
		out = append(out, t.Tag)
	}
	for _, tag := range t.Tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// HasTag reports whether the task carries the given tag in either field.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.AllTags() {
		if have == tag {
			return true
		}
	}
	return false
}

// SetCompleted marks the task completed, keeping Done and Status in sync.
func (t *Task) SetCompleted() {
	t.Done = true
	t.Status = StatusCompleted
}

// SetPending marks the task pending, keeping Done and Status in sync.
func (t *Task) SetPending() {
	t.Done = false
	t.Status = StatusPending
}

// Window returns the scheduling window [start, start+duration). Start falls
// back to the due date when no explicit start time is set; duration falls
// back to the given default when the task has none. ok is false for tasks
// without a due date, which never participate in conflict detection.
func (t *Task) Window(defaultDuration time.Duration) (start, end time.Time, ok bool) {
	if t.DueDate == nil {
		return time.Time{}, time.Time{}, false
	}
	start = *t.DueDate
	if t.StartTime != nil {
		start = *t.StartTime
	}
	dur := defaultDuration
	if t.DurationMinutes > 0 {
		dur = time.Duration(t.DurationMinutes) * time.Minute
	}
	return start, start.Add(dur), true
}

// Clone returns a deep copy so store snapshots stay isolated from callers.
func (t *Task) Clone() Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	if t.Reminders != nil {
		c.Reminders = append([]Reminder(nil), t.Reminders...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.StartTime != nil {
		st := *t.StartTime
		c.StartTime = &st
	}
	if t.Recurring != nil {
		r := *t.Recurring
		if t.Recurring.DaysOfWeek != nil {
			r.DaysOfWeek = append([]int(nil), t.Recurring.DaysOfWeek...)
		}
		if t.Recurring.EndDate != nil {
			end := *t.Recurring.EndDate
			r.EndDate = &end
		}
		c.Recurring = &r
	}
	return c
}

// ParsePriority maps user-facing priority words onto the canonical enum.
// Accepts the synonyms the command grammar recognizes.
func ParsePriority(word string) (Priority, bool) {
	switch word {
	case "high", "urgent", "important":
		return PriorityHigh, true
	case "medium", "normal":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	}
	return "", false
}
