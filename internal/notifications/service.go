package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filesort/internal/config"
)

const userAgent = "filesort/0.1.0"

// Event names a notification-worthy milestone.
type Event string

const (
	EventRunCompleted Event = "run_completed"
	EventRunCancelled Event = "run_cancelled"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event-specific values. Recognised keys: "directory",
// "moved", "skipped", "total", "duration", "error".
type Payload map[string]any

// Service defines the notification surface exposed to run components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func render(event Event, payload Payload) (message, bool) {
	dir := payloadString(payload, "directory")
	switch event {
	case EventRunCompleted:
		skipped := payloadInt(payload, "skipped")
		body := fmt.Sprintf("Organized %d of %d files in %s (%s)",
			payloadInt(payload, "moved"), payloadInt(payload, "total"), dir, payloadDuration(payload))
		title := "filesort - Run Complete"
		if skipped > 0 {
			title = "filesort - Run Complete (with skips)"
			body = fmt.Sprintf("%s\n%d files skipped, see the run log", body, skipped)
		}
		return message{title: title, body: body, tags: []string{"filesort", "run", "completed"}}, true
	case EventRunCancelled:
		return message{
			title: "filesort - Run Cancelled",
			body:  fmt.Sprintf("Cancelled after %d of %d files in %s", payloadInt(payload, "moved"), payloadInt(payload, "total"), dir),
			tags:  []string{"filesort", "run", "cancelled"},
		}, true
	case EventRunFailed:
		reason := payloadString(payload, "error")
		if reason == "" {
			reason = "unknown"
		}
		return message{
			title:    "filesort - Error",
			body:     fmt.Sprintf("Run failed for %s: %s", dir, reason),
			tags:     []string{"filesort", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "filesort - Test",
			body:     "Notification system test",
			tags:     []string{"filesort", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func payloadDuration(payload Payload) string {
	d, _ := payload["duration"].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
