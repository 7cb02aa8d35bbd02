package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filesort/internal/category"
	"filesort/internal/config"
	"filesort/internal/journal"
	"filesort/internal/services"
)

func TestCLIOrganizeHistoryAndUndo(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSourceFiles(t, "report.pdf", "photo.png", "mystery.bin")

	out, _, err := runCLI(t, []string{"organize", env.sourceDir, "--no-input"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if !strings.Contains(out, "Completed: moved 3 files") {
		t.Fatalf("unexpected organize output:\n%s", out)
	}
	if !strings.Contains(out, "Documents") || !strings.Contains(out, "Images") || !strings.Contains(out, "Other") {
		t.Fatalf("summary should list categories:\n%s", out)
	}
	requireFile(t, filepath.Join(env.sourceDir, "organized", "documents", "report.pdf"))
	requireFile(t, filepath.Join(env.sourceDir, "organized", "images", "photo.png"))
	requireFile(t, filepath.Join(env.sourceDir, "organized", "other", "mystery.bin"))
	if got := env.requests.Load(); got != 3 {
		t.Fatalf("expected one provider request per file, got %d", got)
	}

	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.Settings.LastDirectory != env.sourceDir || cfg.Settings.Provider != "claude" {
		t.Fatalf("settings not saved: %+v", cfg.Settings)
	}
	if cfg.Providers.Claude.BaseURL != env.server.URL {
		t.Fatalf("saving settings must keep other sections, got %+v", cfg.Providers.Claude)
	}

	metricsData, err := os.ReadFile(env.metrics)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	if !strings.Contains(string(metricsData), "filesort_organizer_files_total") {
		t.Fatalf("unexpected metrics textfile:\n%s", metricsData)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, env.sourceDir) || !strings.Contains(out, "completed") {
		t.Fatalf("unexpected history output:\n%s", out)
	}

	runID := latestRunID(t, env.journal)
	out, _, err = runCLI(t, []string{"history", "show", runID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, runID) || !strings.Contains(out, "report.pdf") {
		t.Fatalf("unexpected history show output:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"undo", runID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !strings.Contains(out, "restored 3 files") {
		t.Fatalf("unexpected undo output:\n%s", out)
	}
	for _, name := range []string{"report.pdf", "photo.png", "mystery.bin"} {
		requireFile(t, filepath.Join(env.sourceDir, name))
	}

	out, _, err = runCLI(t, []string{"logs", "--match", runID, "-n", "50"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "organization completed") || !strings.Contains(out, "file restored") {
		t.Fatalf("unexpected logs output:\n%s", out)
	}
}

func latestRunID(t *testing.T, path string) string {
	t.Helper()
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns: %v (%d runs)", err, len(runs))
	}
	return runs[0].ID
}

func TestCLIOrganizeReusesLastDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"organize", "--no-input"}, env.configPath); err == nil {
		t.Fatal("expected an error without a directory or saved directory")
	}

	if _, _, err := runCLI(t, []string{"organize", env.sourceDir, "--no-input"}, env.configPath); err != nil {
		t.Fatalf("organize: %v", err)
	}
	env.writeSourceFiles(t, "song.mp3")
	out, _, err := runCLI(t, []string{"organize", "--no-input"}, env.configPath)
	if err != nil {
		t.Fatalf("organize with saved directory: %v", err)
	}
	if !strings.Contains(out, env.sourceDir) {
		t.Fatalf("expected saved directory in output:\n%s", out)
	}
	requireFile(t, filepath.Join(env.sourceDir, "organized", "audio", "song.mp3"))
}

func TestCLIOrganizeEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"organize", env.sourceDir, "--no-input"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if !strings.Contains(out, "No files to organize") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if env.requests.Load() != 0 {
		t.Fatal("no provider request expected for an empty directory")
	}
}

func TestCLIOrganizeMissingDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"organize", filepath.Join(env.baseDir, "nope"), "--no-input"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCLIOrganizeRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, "", true)
	env.writeSourceFiles(t, "a.txt")

	_, _, err := runCLI(t, []string{"organize", env.sourceDir, "--no-input"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireFile(t, filepath.Join(env.sourceDir, "a.txt"))

	_, _, err = runCLI(t, []string{"organize", env.sourceDir, "--no-input", "--api-key", "test-key"}, env.configPath)
	if err != nil {
		t.Fatalf("organize with --api-key: %v", err)
	}
	requireFile(t, filepath.Join(env.sourceDir, "organized", "documents", "a.txt"))
}

func TestCLIOrganizeRejectsUnknownProvider(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"organize", env.sourceDir, "--no-input", "--provider", "gemini"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCLIHistoryRequiresJournal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, "test-key", false)
	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected error when the journal is disabled")
	}
}

func TestCLIHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLIUndoUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"undo", "deadbeef"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCLIConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "filesort.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output:\n%s", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "no API key") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}

	env.writeConfig(t, "sk-abcdefghijklmnop", true)
	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-abcdefghijklmnop") {
		t.Fatalf("config show must mask the api key:\n%s", out)
	}
	if !strings.Contains(out, "sk-a****mnop") {
		t.Fatalf("expected masked key in output:\n%s", out)
	}
}

func TestCLIDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor", env.sourceDir}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "File contents never leave this machine") || !strings.Contains(out, "claude reachable") {
		t.Fatalf("unexpected doctor output:\n%s", out)
	}
	if env.requests.Load() != 1 {
		t.Fatalf("expected one ping request, got %d", env.requests.Load())
	}

	env.writeConfig(t, "wrong-key", true)
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil || !strings.Contains(out, "FAIL") {
		t.Fatalf("expected provider failure, got %v\n%s", err, out)
	}

	out, _, err = runCLI(t, []string{"doctor", "--offline"}, env.configPath)
	if err != nil || !strings.Contains(out, "Provider check skipped") {
		t.Fatalf("offline doctor: %v\n%s", err, out)
	}
}

func TestCLITestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "Notifications disabled") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"short":               "*****",
		"sk-abcdefghijklmnop": "sk-a****mnop",
	}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := categoryLabel(category.Downloads); got != "Downloads" {
		t.Fatalf("categoryLabel = %q", got)
	}
	if got := categoryLabel(""); got != "-" {
		t.Fatalf("categoryLabel empty = %q", got)
	}
}
