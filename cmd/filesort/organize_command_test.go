package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"filesort/internal/logging"
	"filesort/internal/worker"
)

func TestReadControlKeysStopsWhenRunEnds(t *testing.T) {
	in, feed := io.Pipe()
	defer feed.Close()
	controller := worker.New(nil, logging.NewNop())
	done := make(chan struct{})
	var out bytes.Buffer

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		readControlKeys(done, in, controller, &out)
	}()

	if _, err := io.WriteString(feed, "p\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for !controller.Paused() {
		if time.Now().After(deadline) {
			t.Fatal("pause key was not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(done)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("reader kept running after the run ended")
	}
	if !strings.Contains(out.String(), "Paused") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if controller.Cancelled() {
		t.Fatal("ending the run must not cancel through the key reader")
	}
}

func TestReadControlKeysCancel(t *testing.T) {
	controller := worker.New(nil, logging.NewNop())
	var out bytes.Buffer
	readControlKeys(make(chan struct{}), strings.NewReader("c\n"), controller, &out)
	if !controller.Cancelled() {
		t.Fatal("c should cancel the run")
	}
	if !strings.Contains(out.String(), "Cancelling after the current file") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
