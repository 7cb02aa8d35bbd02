package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"filesort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Pinger sends one request to the classification provider.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options selects the optional checks.
type Options struct {
	// SourceDir is checked when set; defaults to the saved last directory.
	SourceDir string
	// Pinger is used for the provider check. A nil Pinger skips it.
	Pinger Pinger
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckAPIKey(cfg.Settings.Provider, cfg.APIKeyFor(cfg.Settings.Provider)))

	source := strings.TrimSpace(opts.SourceDir)
	if source == "" {
		source = cfg.Settings.LastDirectory
	}
	if source != "" {
		results = append(results, CheckDirectoryAccess("Source directory", source))
	}

	if runLog := strings.TrimSpace(cfg.Logging.RunLog); runLog != "" {
		results = append(results, CheckDirectoryAccess("Run log directory", absDir(runLog)))
	}

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path)))
	}

	if textfile := strings.TrimSpace(cfg.Metrics.Textfile); textfile != "" {
		results = append(results, CheckDirectoryAccess("Metrics directory", filepath.Dir(textfile)))
	}

	if opts.Pinger != nil {
		results = append(results, CheckProvider(ctx, cfg.Settings.Provider, opts.Pinger))
	}

	return results
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

func absDir(path string) string {
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
