package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"filesort/internal/logs"
)

const sampleLog = `2024-03-05 14:30:15 INFO [organizer] - organization started
    - run_id: run-1
    - total_files: 2
2024-03-05 14:30:16 INFO [organizer] a.txt - file moved
    - run_id: run-1
    - category: documents
2024-03-05 14:30:17 WARN [organizer] b.png (move) - file skipped
    - run_id: run-1
2024-03-05 14:31:00 INFO [organizer] - organization started
    - run_id: run-2
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file_organizer.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastRecords(t *testing.T) {
	path := writeLog(t, sampleLog)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %#v", result.Records)
	}
	want := []string{"2024-03-05 14:30:17 WARN [organizer] b.png (move) - file skipped", "    - run_id: run-1"}
	if got := result.Records[0].Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("first record = %#v", got)
	}
	if result.Offset != int64(len(sampleLog)) {
		t.Fatalf("offset = %d, want %d", result.Offset, len(sampleLog))
	}
}

func TestTailMatchFiltersRecords(t *testing.T) {
	path := writeLog(t, sampleLog)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10, Match: "run-1"})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected the three run-1 records, got %d", len(result.Records))
	}
	for _, r := range result.Records {
		if !r.Contains("run-1") {
			t.Fatalf("unexpected record %#v", r)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "missing.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Records) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestTailLeavesPartialLine(t *testing.T) {
	path := writeLog(t, "first\nsecond without newline")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].Header != "first" {
		t.Fatalf("unexpected records %#v", result.Records)
	}
	if result.Offset != int64(len("first\n")) {
		t.Fatalf("offset = %d", result.Offset)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected initial record, got %#v", result.Records)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
			return
		}
		if len(res.Records) != 1 || res.Records[0].Header != "later" {
			t.Errorf("unexpected follow records: %#v", res.Records)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}
