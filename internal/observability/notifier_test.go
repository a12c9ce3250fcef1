package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookNotifier_PostsJSON(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload is not JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Notify("Call mom", "Reminder set for today"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if got.Title != "Call mom" || got.Body != "Reminder set for today" {
		t.Errorf("payload fields wrong: %+v", got)
	}
	if got.FiredAt.IsZero() {
		t.Errorf("firedAt should be stamped")
	}
}

func TestWebhookNotifier_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Notify("x", "y"); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.Notify("anything", "at all"); err != nil {
		t.Fatalf("log notifier must not fail: %v", err)
	}
}
