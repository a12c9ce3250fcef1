package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/tasktalk/internal/nlp"
	"github.com/valter-silva-au/tasktalk/internal/parser"
	"github.com/valter-silva-au/tasktalk/internal/sched"
	"github.com/valter-silva-au/tasktalk/internal/store"
	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Wednesday 2024-06-12, 10:00 local.
var fixedNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.Local)

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (kv *memKV) Get(key string) ([]byte, error)     { return kv.data[key], nil }
func (kv *memKV) Set(key string, value []byte) error { kv.data[key] = value; return nil }

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.TaskStore) {
	t.Helper()
	s := store.New(newMemKV())
	d := New(
		s,
		parser.NewAt(func() time.Time { return fixedNow }),
		nlp.NewPipelineAt(nil, nil, func() time.Time { return fixedNow }),
		sched.NewConflictDetector(time.Hour),
		sched.NewRecurrenceEngine(),
		nil,
		nil,
	)
	d.now = func() time.Time { return fixedNow }
	return d, s
}

func handle(t *testing.T, d *Dispatcher, input string) string {
	t.Helper()
	msg, err := d.Handle(context.Background(), input)
	if err != nil {
		t.Fatalf("handle %q failed: %v", input, err)
	}
	if msg == "" {
		t.Fatalf("handle %q returned empty feedback", input)
	}
	return msg
}

func TestHandle_AddAndTick(t *testing.T) {
	d, s := newTestDispatcher(t)

	msg := handle(t, d, "add buy milk #groceries !high")
	if !strings.Contains(msg, `Added "buy milk"`) {
		t.Errorf("unexpected add feedback: %q", msg)
	}
	task := s.Snapshot()[0]
	if task.Tags[0] != "groceries" || task.Priority != models.PriorityHigh {
		t.Errorf("add did not carry metadata: %+v", task)
	}

	msg = handle(t, d, "tick milk")
	if msg != `Completed 1 task(s) matching "milk"` {
		t.Errorf("unexpected tick feedback: %q", msg)
	}
	if !s.Snapshot()[0].Done {
		t.Errorf("task should be completed")
	}
}

func TestHandle_TickCompletesOnlyFirstMatch(t *testing.T) {
	d, s := newTestDispatcher(t)

	handle(t, d, "add buy milk")
	handle(t, d, "add oat milk run")

	handle(t, d, "tick milk")

	tasks := s.Snapshot()
	if !tasks[0].Done {
		t.Errorf("first match should be completed")
	}
	if tasks[1].Done {
		t.Errorf("second match must not be touched without the all prefix")
	}
}

func TestHandle_TickAllCompletesEveryMatch(t *testing.T) {
	d, s := newTestDispatcher(t)

	handle(t, d, "add buy milk")
	handle(t, d, "add oat milk run")

	msg := handle(t, d, "tick all milk")
	if msg != `Completed 2 task(s) matching "milk"` {
		t.Errorf("unexpected feedback: %q", msg)
	}
	for _, task := range s.Snapshot() {
		if !task.Done {
			t.Errorf("task %q should be completed", task.Title)
		}
	}
}

func TestHandle_NoMatchReportsWithoutMutation(t *testing.T) {
	d, s := newTestDispatcher(t)
	handle(t, d, "add buy milk")

	msg := handle(t, d, "tick bread")
	if msg != `No matching tasks found for "bread"` {
		t.Errorf("unexpected feedback: %q", msg)
	}
	if s.Snapshot()[0].Done {
		t.Errorf("no-match command must not mutate")
	}
}

func TestHandle_DeleteFirstMatchOnly(t *testing.T) {
	d, s := newTestDispatcher(t)
	handle(t, d, "add buy milk")
	handle(t, d, "add oat milk run")

	handle(t, d, "delete milk")
	tasks := s.Snapshot()
	if len(tasks) != 1 || tasks[0].Title != "oat milk run" {
		t.Errorf("expected only the first match deleted, got %+v", tasks)
	}
}

func TestHandle_UnknownInputBecomesTask(t *testing.T) {
	d, s := newTestDispatcher(t)

	// No grammar match, no remote: the heuristic tier records it.
	msg := handle(t, d, "i need to pick up the dry cleaning tomorrow")
	if !strings.Contains(msg, "Added") {
		t.Errorf("free text should become a task: %q", msg)
	}

	tasks := s.Snapshot()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if !strings.Contains(strings.ToLower(task.Title), "pick up the dry cleaning") {
		t.Errorf("title should carry the task text: %q", task.Title)
	}
	if strings.Contains(strings.ToLower(task.Title), "tomorrow") {
		t.Errorf("date phrase should not survive in the title: %q", task.Title)
	}
	if task.DueDate == nil || task.DueDate.Day() != 13 {
		t.Errorf("due should resolve to tomorrow, got %v", task.DueDate)
	}
}

func TestHandle_TickRecurringRegeneratesNext(t *testing.T) {
	d, s := newTestDispatcher(t)

	handle(t, d, "add water plants")
	handle(t, d, "due today water plants")
	handle(t, d, "repeat daily water plants")

	msg := handle(t, d, "tick water plants")
	if !strings.Contains(msg, "Next occurrence") {
		t.Errorf("expected regeneration feedback, got %q", msg)
	}

	tasks := s.Snapshot()
	if len(tasks) != 2 {
		t.Fatalf("expected completed original plus regenerated instance, got %d", len(tasks))
	}
	original, next := tasks[0], tasks[1]
	if !original.Done {
		t.Errorf("original should remain, completed")
	}
	if next.Done || next.ID == original.ID {
		t.Errorf("regenerated instance must be pending with a fresh id")
	}
	if next.DueDate == nil || !next.DueDate.Equal(original.DueDate.AddDate(0, 0, 1)) {
		t.Errorf("daily recurrence should advance one day, got %v", next.DueDate)
	}
}

func TestHandle_AddReportsConflict(t *testing.T) {
	d, _ := newTestDispatcher(t)

	handle(t, d, "add standup")
	handle(t, d, "due today standup")
	msg := handle(t, d, "due today retro")
	if !strings.Contains(msg, "No matching tasks") {
		// retro doesn't exist yet; add it first.
		t.Fatalf("unexpected feedback: %q", msg)
	}

	handle(t, d, "add retro")
	msg = handle(t, d, "due today retro")
	if !strings.Contains(msg, "overlaps") {
		t.Errorf("same-day due dates should report a conflict, got %q", msg)
	}
}

func TestHandle_SubtaskAndTag(t *testing.T) {
	d, s := newTestDispatcher(t)
	handle(t, d, "add plan party")

	msg := handle(t, d, "add subtask book venue to plan party")
	if !strings.Contains(msg, "Added subtask") {
		t.Errorf("unexpected feedback: %q", msg)
	}
	if subs := s.Snapshot()[0].Subtasks; len(subs) != 1 || subs[0].Text != "book venue" {
		t.Errorf("subtask not attached: %+v", subs)
	}

	handle(t, d, "tag plan party as social")
	if !s.Snapshot()[0].HasTag("social") {
		t.Errorf("tag not applied")
	}
}

func TestHandle_RemindRelativeNeedsDueDate(t *testing.T) {
	d, s := newTestDispatcher(t)
	handle(t, d, "add dentist appointment")

	msg := handle(t, d, "remind me 2 hours before dentist")
	if !strings.Contains(msg, "no due date") {
		t.Errorf("expected guidance about the missing due date, got %q", msg)
	}

	handle(t, d, "due tomorrow dentist")
	handle(t, d, "remind me 2 hours before dentist")
	task := s.Snapshot()[0]
	if len(task.Reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(task.Reminders))
	}
	r := task.Reminders[0]
	if r.Kind != models.ReminderRelative || r.OffsetMinutes != 120 {
		t.Errorf("wrong reminder shape: %+v", r)
	}
	if want := task.DueDate.Add(-2 * time.Hour); !r.At.Equal(want) {
		t.Errorf("reminder should fire 2h before due, got %v", r.At)
	}
}

func TestHandle_PrefsCommands(t *testing.T) {
	d, s := newTestDispatcher(t)

	handle(t, d, "sort by due date")
	if s.Prefs().SortBy != "due" {
		t.Errorf("sort pref not applied: %q", s.Prefs().SortBy)
	}

	handle(t, d, "dark mode")
	if !s.Prefs().DarkMode {
		t.Errorf("dark mode pref not applied")
	}
	handle(t, d, "light")
	if s.Prefs().DarkMode {
		t.Errorf("light mode pref not applied")
	}

	handle(t, d, "show calendar")
	if !s.Prefs().CalendarVisible {
		t.Errorf("calendar toggle not applied")
	}
}

func TestHandle_ArchiveCompleted(t *testing.T) {
	d, s := newTestDispatcher(t)
	handle(t, d, "add buy milk")
	handle(t, d, "add walk dog")
	handle(t, d, "tick buy milk")

	msg := handle(t, d, "archive completed")
	if msg != "Archived 1 task(s)" {
		t.Errorf("unexpected feedback: %q", msg)
	}
	tasks := s.Snapshot()
	if tasks[0].Status != models.StatusArchived {
		t.Errorf("completed task should be archived")
	}
	if tasks[1].Status == models.StatusArchived {
		t.Errorf("pending task must not be archived")
	}
}

func TestHandle_SummarizeToday(t *testing.T) {
	d, _ := newTestDispatcher(t)
	handle(t, d, "add buy milk")
	handle(t, d, "due today buy milk")

	msg := handle(t, d, "summarize today")
	if !strings.Contains(msg, "1 open") {
		t.Errorf("unexpected summary: %q", msg)
	}
}

func TestHandle_HelpAndEmptyInput(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if msg := handle(t, d, "help"); !strings.Contains(msg, "due <today|tomorrow") {
		t.Errorf("help should enumerate the grammar: %q", msg)
	}
	if msg := handle(t, d, "   "); !strings.Contains(msg, "help") {
		t.Errorf("empty input should point at help: %q", msg)
	}
}

// classifyOnly always answers with a fixed classification payload.
type classifyOnly struct {
	resp string
}

func (f classifyOnly) Generate(ctx context.Context, prompt string) (string, error) {
	return f.resp, nil
}

func TestHandle_IntentRoutesCompletion(t *testing.T) {
	s := store.New(newMemKV())
	remote := classifyOnly{resp: `{"label": "complete_task", "confidence": 0.9}`}
	d := New(
		s,
		parser.NewAt(func() time.Time { return fixedNow }),
		nlp.NewPipelineAt(remote, nil, func() time.Time { return fixedNow }),
		sched.NewConflictDetector(time.Hour),
		sched.NewRecurrenceEngine(),
		nil,
		nil,
	)
	d.now = func() time.Time { return fixedNow }

	handle(t, d, "add buy milk")

	// No grammar rule matches, so the classifier routes this to a tick.
	msg := handle(t, d, "please mark the milk as done")
	if !strings.Contains(msg, "Completed 1 task(s)") {
		t.Errorf("intent should route to completion: %q", msg)
	}
	if !s.Snapshot()[0].Done {
		t.Errorf("task should be completed via intent routing")
	}
}

func TestHandle_FilterByTag(t *testing.T) {
	d, _ := newTestDispatcher(t)
	handle(t, d, "add buy milk #groceries")
	handle(t, d, "add walk dog")

	msg := handle(t, d, "filter groceries")
	if !strings.Contains(msg, "buy milk") || strings.Contains(msg, "walk dog") {
		t.Errorf("filter should list only tagged tasks: %q", msg)
	}
}
