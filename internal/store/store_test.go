package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (kv *memKV) Get(key string) ([]byte, error) {
	return kv.data[key], nil
}

func (kv *memKV) Set(key string, value []byte) error {
	kv.data[key] = value
	return nil
}

func sampleTask(title string) models.Task {
	return models.Task{
		ID:        title + "-id",
		Title:     title,
		Status:    models.StatusPending,
		CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRoundTrip(t *testing.T) {
	kv := newMemKV()
	s := New(kv)

	due := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)
	task := sampleTask("buy milk")
	task.Tags = []string{"groceries"}
	task.Priority = models.PriorityHigh
	task.DueDate = &due
	task.Subtasks = []models.Subtask{{ID: "s1", Text: "check fridge"}}
	task.Reminders = []models.Reminder{{ID: "r1", At: due.Add(-time.Hour), Kind: models.ReminderRelative, OffsetMinutes: 60}}
	task.Recurring = &models.RecurrenceRule{Type: models.RecurWeekly, Interval: 1, DaysOfWeek: []int{1, 3}}

	if err := s.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, task)
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	reloaded := New(kv)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got := reloaded.Snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got))
	}
	g := got[0]
	if g.ID != task.ID || g.Title != task.Title || g.Priority != task.Priority {
		t.Errorf("task fields changed across round trip: %+v", g)
	}
	if g.DueDate == nil || !g.DueDate.Equal(due) {
		t.Errorf("due date changed: %v", g.DueDate)
	}
	if len(g.Tags) != 1 || g.Tags[0] != "groceries" {
		t.Errorf("tags changed: %v", g.Tags)
	}
	if len(g.Subtasks) != 1 || len(g.Reminders) != 1 {
		t.Errorf("substructure changed: %d subtasks, %d reminders", len(g.Subtasks), len(g.Reminders))
	}
	if g.Recurring == nil || len(g.Recurring.DaysOfWeek) != 2 {
		t.Errorf("recurrence changed: %+v", g.Recurring)
	}
}

func TestLoad_UnionsLegacyTag(t *testing.T) {
	kv := newMemKV()

	persisted := []map[string]any{
		{
			"id": "t1", "title": "old shape", "status": "pending",
			"tag": "work", "tags": []string{"urgent", "work"},
		},
	}
	data, _ := json.Marshal(persisted)
	kv.data[KeyTasks] = data

	s := New(kv)
	if err := s.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got := s.Snapshot()[0]
	if got.Tag != "" {
		t.Errorf("legacy tag should be cleared after migration, got %q", got.Tag)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "urgent" {
		t.Errorf("expected union [work urgent], got %v", got.Tags)
	}
}

func TestLoad_ReconcilesDoneStatus(t *testing.T) {
	kv := newMemKV()

	persisted := []map[string]any{
		{"id": "a", "title": "done no status", "done": true},
		{"id": "b", "title": "status wins", "status": "completed", "done": false},
	}
	data, _ := json.Marshal(persisted)
	kv.data[KeyTasks] = data

	s := New(kv)
	if err := s.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tasks := s.Snapshot()
	if tasks[0].Status != models.StatusCompleted {
		t.Errorf("done=true should derive status completed, got %s", tasks[0].Status)
	}
	if !tasks[1].Done {
		t.Errorf("status=completed should force done=true")
	}
}

func TestSnapshot_IsolatedFromStore(t *testing.T) {
	s := New(newMemKV())
	if err := s.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, sampleTask("original"))
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	snap := s.Snapshot()
	snap[0].Title = "mutated"

	if got := s.Snapshot()[0].Title; got != "original" {
		t.Errorf("snapshot mutation leaked into store: %q", got)
	}
}

func TestEnsureProject_Idempotent(t *testing.T) {
	s := New(newMemKV())

	p1, err := s.EnsureProject("Work")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	p2, err := s.EnsureProject("work")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if p1.ID != p2.ID {
		t.Errorf("case-insensitive ensure created a duplicate project")
	}
	if len(s.Projects()) != 1 {
		t.Errorf("expected 1 project, got %d", len(s.Projects()))
	}
}

func TestSorted_ByPriorityAndDue(t *testing.T) {
	s := New(newMemKV())

	d1 := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	low := sampleTask("low")
	low.Priority = models.PriorityLow
	low.DueDate = &d2
	high := sampleTask("high")
	high.Priority = models.PriorityHigh
	high.DueDate = &d1
	none := sampleTask("none")

	if err := s.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, low, high, none)
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if err := s.UpdatePrefs(func(p *Prefs) { p.SortBy = "priority" }); err != nil {
		t.Fatalf("prefs failed: %v", err)
	}
	got := s.Sorted()
	if got[0].Title != "high" || got[2].Title != "none" {
		t.Errorf("priority sort order wrong: %s %s %s", got[0].Title, got[1].Title, got[2].Title)
	}

	if err := s.UpdatePrefs(func(p *Prefs) { p.SortBy = "due" }); err != nil {
		t.Fatalf("prefs failed: %v", err)
	}
	got = s.Sorted()
	if got[0].Title != "low" || got[2].Title != "none" {
		t.Errorf("due sort order wrong: %s %s %s", got[0].Title, got[1].Title, got[2].Title)
	}
}
