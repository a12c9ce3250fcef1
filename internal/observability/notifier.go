package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Notifier delivers a user-visible notification. Delivery is best-effort:
// callers must tolerate failure without aborting the mutation that triggered
// the notification.
type Notifier interface {
	Notify(title, body string) error
}

// webhookNotifier POSTs notifications as JSON to a configured webhook URL.
type webhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a Notifier posting to the given URL.
func NewWebhookNotifier(url string) Notifier {
	return &webhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	FiredAt time.Time `json:"firedAt"`
}

// Notify posts the notification. Non-2xx responses are errors.
func (w *webhookNotifier) Notify(title, body string) error {
	payload, err := json.Marshal(webhookPayload{Title: title, Body: body, FiredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// logNotifier writes notifications to the structured log. Used when no
// webhook is configured so reminders remain visible somewhere.
type logNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a Notifier that logs instead of delivering.
func NewLogNotifier(logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(title, body string) error {
	n.logger.Info("notification", "title", title, "body", body)
	return nil
}
