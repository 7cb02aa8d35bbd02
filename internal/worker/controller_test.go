package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"filesort/internal/category"
	"filesort/internal/logging"
	"filesort/internal/organizer"
	"filesort/internal/scanner"
	"filesort/internal/services"
	"filesort/internal/testsupport"
)

type runnerFunc func(ctx context.Context, controls organizer.Controls, observer organizer.Observer) (organizer.Summary, error)

func (f runnerFunc) Run(ctx context.Context, controls organizer.Controls, observer organizer.Observer) (organizer.Summary, error) {
	return f(ctx, controls, observer)
}

func collect(t *testing.T, c *Controller) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-c.Events():
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatalf("event stream did not close; got %d events", len(events))
		}
	}
}

func types(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, event := range events {
		out = append(out, event.Type)
	}
	return out
}

func TestControllerForwardsEventsInOrder(t *testing.T) {
	runner := runnerFunc(func(_ context.Context, _ organizer.Controls, obs organizer.Observer) (organizer.Summary, error) {
		obs.FileStarted("a.txt")
		obs.Progress(100)
		obs.FileDone(organizer.FileResult{Name: "a.txt", Category: category.Documents, Moved: true})
		return organizer.Summary{State: organizer.StateCompleted, Total: 1, Processed: 1, Moved: 1}, nil
	})
	c := New(runner, logging.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	events := collect(t, c)
	want := []EventType{EventFileStarted, EventProgress, EventFileDone, EventCompleted}
	if got := types(events); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if events[1].Percent != 100 || events[2].Result.Category != category.Documents {
		t.Fatalf("unexpected payloads: %+v", events)
	}

	summary, err := c.Wait()
	if err != nil || summary.Moved != 1 {
		t.Fatalf("Wait = %+v, %v", summary, err)
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed after the run")
	}
}

func TestControllerReportsFailure(t *testing.T) {
	runErr := services.Wrap(services.ErrValidation, "organize", "create destination root", "read-only", nil)
	runner := runnerFunc(func(context.Context, organizer.Controls, organizer.Observer) (organizer.Summary, error) {
		return organizer.Summary{State: organizer.StateFailed}, runErr
	})
	c := New(runner, logging.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, c)
	if len(events) != 1 || events[0].Type != EventFailed || events[0].Message == "" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if _, err := c.Wait(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Wait error = %v", err)
	}
}

func TestControllerStartsOnce(t *testing.T) {
	runner := runnerFunc(func(context.Context, organizer.Controls, organizer.Observer) (organizer.Summary, error) {
		return organizer.Summary{State: organizer.StateCompleted}, nil
	})
	c := New(runner, logging.NewNop())
	if _, err := c.Wait(); err == nil {
		t.Fatal("Wait before Start should fail")
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("second Start error = %v", err)
	}
	collect(t, c)
}

func TestControllerWithoutRunner(t *testing.T) {
	c := New(nil, logging.NewNop())
	if err := c.Start(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("Start error = %v", err)
	}
}

func TestControllerPauseFlags(t *testing.T) {
	c := New(nil, logging.NewNop())
	if c.Paused() {
		t.Fatal("new controller should not be paused")
	}
	if !c.TogglePause() || !c.Paused() {
		t.Fatal("toggle should pause")
	}
	if c.TogglePause() || c.Paused() {
		t.Fatal("second toggle should resume")
	}
	c.Pause()
	c.Pause()
	if !c.Paused() {
		t.Fatal("Pause should set the flag")
	}
	c.Resume()
	if c.Paused() {
		t.Fatal("Resume should clear the flag")
	}
	c.Cancel()
	if !c.Cancelled() {
		t.Fatal("Cancel should set the flag")
	}
}

type extClassifier struct{}

func (extClassifier) Classify(_ context.Context, rec scanner.FileRecord) category.Category {
	if rec.Extension == ".png" {
		return category.Images
	}
	return category.Documents
}

func TestControllerDrivesOrganizer(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFiles(t, dir, "a.txt", "b.png")
	org := organizer.New(organizer.Options{SourceDir: dir, PausePollInterval: 5 * time.Millisecond}, extClassifier{}, logging.NewNop())

	c := New(org, logging.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, c)
	want := []EventType{
		EventFileStarted, EventProgress, EventFileDone,
		EventFileStarted, EventProgress, EventFileDone,
		EventCompleted,
	}
	if got := types(events); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if events[0].File != "a.txt" || events[3].File != "b.png" {
		t.Fatalf("files visited out of order: %+v", events)
	}
	last := events[len(events)-1].Summary
	if last.PerCategory[category.Images] != 1 || last.PerCategory[category.Documents] != 1 {
		t.Fatalf("unexpected summary: %+v", last)
	}
	if _, err := os.Stat(filepath.Join(dir, "organized", "images", "b.png")); err != nil {
		t.Fatalf("expected b.png moved: %v", err)
	}
}

func TestControllerCancelWhilePaused(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFiles(t, dir, "a.txt", "b.txt")
	org := organizer.New(organizer.Options{SourceDir: dir, PausePollInterval: 5 * time.Millisecond}, extClassifier{}, logging.NewNop())

	c := New(org, logging.NewNop())
	c.Pause()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	c.Cancel()

	events := collect(t, c)
	if got := types(events); !reflect.DeepEqual(got, []EventType{EventStateChanged, EventCancelled}) {
		t.Fatalf("events = %v", got)
	}
	if events[0].State != organizer.StatePaused {
		t.Fatalf("expected paused state event, got %+v", events[0])
	}
	if names := testsupport.ListFiles(t, dir); len(names) != 2 {
		t.Fatalf("no file should move while paused, source holds %v", names)
	}
}
