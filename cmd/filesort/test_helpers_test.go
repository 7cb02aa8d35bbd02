package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	sourceDir  string
	configPath string
	journal    string
	runLog     string
	metrics    string
	server     *httptest.Server
	requests   atomic.Int64
}

var replyByExtension = map[string]string{
	".txt": "documents",
	".pdf": "documents",
	".png": "images",
	".jpg": "images",
	".mp3": "audio",
	".zip": "archives",
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"FILESORT_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:    base,
		sourceDir:  filepath.Join(base, "downloads"),
		configPath: filepath.Join(base, "config.toml"),
		journal:    filepath.Join(base, "journal.db"),
		runLog:     filepath.Join(base, "file_organizer.log"),
		metrics:    filepath.Join(base, "metrics", "filesort.prom"),
	}
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
			return
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reply := "ok"
		for _, line := range strings.Split(req.Messages[0].Content, "\n") {
			if name, ok := strings.CutPrefix(line, "Filename: "); ok {
				reply = replyByExtension[strings.ToLower(filepath.Ext(name))]
				if reply == "" {
					reply = "unsure"
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"content":[{"type":"text","text":%q}],"stop_reason":"end_turn"}`, reply)
	}))
	t.Cleanup(env.server.Close)

	env.writeConfig(t, "test-key", true)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, apiKey string, journalEnabled bool) {
	t.Helper()
	content := fmt.Sprintf(`[settings]
api_key = %q
provider = "claude"

[providers.claude]
base_url = %q

[organizer]
request_interval_ms = 0
pause_poll_interval_ms = 5

[logging]
level = "warn"
run_log = %q

[journal]
enabled = %t
path = %q

[metrics]
textfile = %q
`, apiKey, e.server.URL, e.runLog, journalEnabled, e.journal, e.metrics)
	if err := os.WriteFile(e.configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) writeSourceFiles(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(e.sourceDir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
}
