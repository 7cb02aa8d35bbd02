package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filesort/internal/config"
	"filesort/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckProvider(t *testing.T) {
	ok := CheckProvider(context.Background(), "claude", pingFunc(func(context.Context) error { return nil }))
	if !ok.Passed || !strings.Contains(ok.Detail, "claude") {
		t.Fatalf("unexpected result: %+v", ok)
	}

	failed := CheckProvider(context.Background(), "claude", pingFunc(func(context.Context) error {
		return errors.New("status 401: invalid key")
	}))
	if failed.Passed || !strings.Contains(failed.Detail, "401") {
		t.Fatalf("unexpected result: %+v", failed)
	}

	timedOut := CheckProvider(context.Background(), "groq", pingFunc(func(context.Context) error {
		return context.DeadlineExceeded
	}))
	if timedOut.Passed || !strings.Contains(timedOut.Detail, "timed out") {
		t.Fatalf("unexpected result: %+v", timedOut)
	}
}

func TestRunAllSkipsDisabledFeatures(t *testing.T) {
	t.Setenv("FILESORT_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := testsupport.NewConfig(t, testsupport.WithoutJournal())
	cfg.Settings.APIKey = ""

	results := RunAll(context.Background(), cfg, Options{})
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "API key,Run log directory" {
		t.Fatalf("unexpected checks: %v", names)
	}
	if Failed(results) != 1 || results[0].Passed {
		t.Fatalf("expected only the api key check to fail: %+v", results)
	}
}

func TestRunAllIncludesProviderAndPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Settings.Provider = "openai"
	cfg.Settings.APIKey = "sk-test"
	cfg.Logging.RunLog = filepath.Join(base, "file_organizer.log")
	cfg.Journal.Path = filepath.Join(base, "journal", "journal.db")
	cfg.Metrics.Textfile = filepath.Join(base, "filesort.prom")

	results := RunAll(context.Background(), &cfg, Options{
		SourceDir: base,
		Pinger:    pingFunc(func(context.Context) error { return nil }),
	})
	if len(results) != 6 {
		t.Fatalf("expected six checks, got %+v", results)
	}
	if Failed(results) != 1 {
		t.Fatalf("only the missing journal directory should fail: %+v", results)
	}
	for _, r := range results {
		if r.Name == "Journal directory" && r.Passed {
			t.Fatal("journal directory does not exist yet")
		}
	}
}
