package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filesort/internal/config"
	"filesort/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"moved": 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"directory": "/home/me/Downloads",
				"moved":     3,
				"total":     3,
				"duration":  90 * time.Second,
			},
			expectTitle:   "filesort - Run Complete",
			expectMessage: "Organized 3 of 3 files in /home/me/Downloads (1m30s)",
			expectTags:    "filesort,run,completed",
		},
		{
			name:  "completed with skips",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"directory": "/tmp/in",
				"moved":     1,
				"skipped":   2,
				"total":     3,
			},
			expectTitle:   "filesort - Run Complete (with skips)",
			expectMessage: "Organized 1 of 3 files in /tmp/in (0s)\n2 files skipped, see the run log",
			expectTags:    "filesort,run,completed",
		},
		{
			name:          "cancelled",
			event:         notifications.EventRunCancelled,
			payload:       notifications.Payload{"directory": "/tmp/in", "moved": 2, "total": 5},
			expectTitle:   "filesort - Run Cancelled",
			expectMessage: "Cancelled after 2 of 5 files in /tmp/in",
			expectTags:    "filesort,run,cancelled",
		},
		{
			name:           "failed",
			event:          notifications.EventRunFailed,
			payload:        notifications.Payload{"directory": "/tmp/in", "error": errors.New("permission denied")},
			expectTitle:    "filesort - Error",
			expectMessage:  "Run failed for /tmp/in: permission denied",
			expectTags:     "filesort,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "topic reserved")
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestNtfyServiceIgnoresUnknownEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for unknown event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if err := notifications.NewService(&cfg).Publish(context.Background(), notifications.Event("disc_detected"), nil); err != nil {
		t.Fatalf("expected nil for unknown event, got %v", err)
	}
}
