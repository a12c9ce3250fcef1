package nlp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type fakeGenerator struct {
	resp  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.resp, f.err
}

func TestGenerative_ParsesStrictResponse(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "Call the bank", "due": null, "tags": ["money"], "priority": "high"}`}
	e := NewGenerativeExtractor(remote, nil)

	got, err := e.Extract(context.Background(), "call the bank")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got.Title != "Call the bank" {
		t.Errorf("expected title, got %q", got.Title)
	}
	// No explicit markers in the input, so the model's metadata guesses are
	// dropped.
	if len(got.Tags) != 0 {
		t.Errorf("unmarked tags must be emptied, got %v", got.Tags)
	}
	if got.Priority != "" {
		t.Errorf("unmarked priority must be unset, got %q", got.Priority)
	}
}

func TestGenerative_TrustsExplicitMarkers(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "Call the bank", "due": null, "tags": ["money"], "priority": "high"}`}
	e := NewGenerativeExtractor(remote, nil)

	got, err := e.Extract(context.Background(), "call the bank #money !high")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "money" {
		t.Errorf("marked tags should be kept, got %v", got.Tags)
	}
	if got.Priority != "high" {
		t.Errorf("marked priority should be kept, got %q", got.Priority)
	}
}

func TestGenerative_RepairsTruncatedJSON(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "Call the bank", "tags": []`}
	e := NewGenerativeExtractor(remote, nil)

	got, err := e.Extract(context.Background(), "call the bank")
	if err != nil {
		t.Fatalf("truncated JSON should be repaired: %v", err)
	}
	if got.Title != "Call the bank" {
		t.Errorf("expected title, got %q", got.Title)
	}
}

func TestGenerative_RepairsLooselyTypedJSON(t *testing.T) {
	remote := &fakeGenerator{resp: `Sure! {title: 'Call the bank', tags: [], priority: 'high'}`}
	e := NewGenerativeExtractor(remote, nil)

	got, err := e.Extract(context.Background(), "call the bank")
	if err != nil {
		t.Fatalf("loose JSON should be repaired: %v", err)
	}
	if got.Title != "Call the bank" {
		t.Errorf("expected title, got %q", got.Title)
	}
}

func TestGenerative_CommandInputShortCircuits(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "whatever"}`}
	e := NewGenerativeExtractor(remote, nil)

	_, err := e.Extract(context.Background(), "change all the work tags to home")
	if !errors.Is(err, ErrNotATask) {
		t.Fatalf("expected ErrNotATask, got %v", err)
	}
	if remote.calls != 0 {
		t.Errorf("command input must not reach the remote service")
	}
}

func TestGenerative_EchoedExampleRejected(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "Buy milk", "tags": []}`}
	e := NewGenerativeExtractor(remote, nil)

	if _, err := e.Extract(context.Background(), "schedule the dentist"); err == nil {
		t.Fatalf("echoed few-shot answer must be rejected")
	}

	// The same title is fine when the input actually says it.
	got, err := e.Extract(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("genuine match rejected as echo: %v", err)
	}
	if got.Title != "Buy milk" {
		t.Errorf("expected title, got %q", got.Title)
	}
}

func TestGenerative_RemoteErrorPropagates(t *testing.T) {
	remote := &fakeGenerator{err: errors.New("boom")}
	e := NewGenerativeExtractor(remote, nil)

	if _, err := e.Extract(context.Background(), "call the bank"); err == nil {
		t.Fatalf("remote failure must surface so the pipeline can degrade")
	}
}

func TestGenerative_LogsRepairedResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	remote := &fakeGenerator{resp: `{"title": "Call the bank", "tags": []`}
	e := NewGenerativeExtractor(remote, logger)

	if _, err := e.Extract(context.Background(), "call the bank"); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(buf.String(), "repaired") {
		t.Errorf("repair path should be logged, got %q", buf.String())
	}
}

func TestGenerative_LogsEchoRejection(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	remote := &fakeGenerator{resp: `{"title": "Buy milk", "tags": []}`}
	e := NewGenerativeExtractor(remote, logger)

	if _, err := e.Extract(context.Background(), "schedule the dentist"); err == nil {
		t.Fatalf("echoed few-shot answer must be rejected")
	}
	if !strings.Contains(buf.String(), "echoed") {
		t.Errorf("echo rejection should be logged, got %q", buf.String())
	}
}

func TestGenerative_ParsesRFC3339Due(t *testing.T) {
	remote := &fakeGenerator{resp: `{"title": "Call the bank", "due": "2024-06-15T17:00:00Z", "tags": []}`}
	e := NewGenerativeExtractor(remote, nil)

	got, err := e.Extract(context.Background(), "call the bank")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	want := time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC)
	if got.Due == nil || !got.Due.Equal(want) {
		t.Errorf("expected due %v, got %v", want, got.Due)
	}
}
