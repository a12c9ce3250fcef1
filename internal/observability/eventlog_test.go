package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	l, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestEventLog_WriteAndReadBack(t *testing.T) {
	l := newTestLog(t)

	events := []Event{
		{Type: EventTaskCreated, Message: "Buy milk", Data: map[string]any{"id": "t1"}},
		{Type: EventTaskCompleted, Message: "Buy milk"},
		{Type: EventReminderFired, Message: "Call mom"},
	}
	for _, e := range events {
		if err := l.Write(e); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	got, err := l.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Type != EventTaskCreated || got[0].Data["id"] != "t1" {
		t.Errorf("first event corrupted: %+v", got[0])
	}
	if got[0].Time.IsZero() {
		t.Errorf("write should stamp a zero time")
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	l := newTestLog(t)

	_ = l.Write(Event{Type: EventTaskCreated, Message: "a"})
	_ = l.Write(Event{Type: EventTaskDeleted, Message: "b"})
	_ = l.Write(Event{Type: EventTaskCreated, Message: "c"})

	got, err := l.Read(EventFilter{Type: EventTaskCreated})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 created events, got %d", len(got))
	}
}

func TestEventLog_FilterByTime(t *testing.T) {
	l := newTestLog(t)

	early := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	_ = l.Write(Event{Time: early, Type: EventTaskCreated})
	_ = l.Write(Event{Time: late, Type: EventTaskCreated})

	cutoff := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	got, err := l.Read(EventFilter{Since: &cutoff})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 1 || !got[0].Time.Equal(late) {
		t.Errorf("since filter wrong: %+v", got)
	}
}

func TestEventLog_ReadMissingFileIsEmpty(t *testing.T) {
	l := &jsonlEventLog{path: filepath.Join(t.TempDir(), "never-written.jsonl")}

	got, err := l.Read(EventFilter{})
	if err != nil {
		t.Fatalf("missing file should read as empty: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}
