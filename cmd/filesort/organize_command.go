package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filesort/internal/category"
	"filesort/internal/classifier"
	"filesort/internal/config"
	"filesort/internal/journal"
	"filesort/internal/logging"
	"filesort/internal/metrics"
	"filesort/internal/notifications"
	"filesort/internal/organizer"
	"filesort/internal/worker"
)

type organizeOptions struct {
	provider string
	apiKey   string
	interval time.Duration
	noInput  bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var opts organizeOptions

	cmd := &cobra.Command{
		Use:   "organize [directory]",
		Short: "Sort the files of a directory into category folders",
		Long: `Classify every file directly inside the directory and move it into
<directory>/organized/<category>/. Only the file name, type, and creation date
are sent to the provider.

While running, type "p" and Enter to pause or resume and "c" and Enter to
cancel. SIGINT and SIGTERM cancel after the current file; SIGUSR1 toggles pause.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				opts.interval = max(opts.interval, 0)
				cfg.Organizer.RequestIntervalMS = int(opts.interval / time.Millisecond)
			}
			var dir string
			if len(args) > 0 {
				dir = args[0]
			}
			return runOrganize(cmd, ctx, cfg, dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "Provider to use (claude, openai, groq, or 0-2)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key for the provider (saved for the next run)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Delay between classification requests (0 disables pacing)")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Ignore pause and cancel keys on stdin")
	return cmd
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, dir string, opts organizeOptions) error {
	out := cmd.OutOrStdout()

	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = strings.TrimSpace(cfg.Settings.LastDirectory)
	}
	if dir == "" {
		return errors.New("no directory given and no previous directory saved; run `filesort organize <directory>`")
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	dir, err = filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	if p := strings.TrimSpace(opts.provider); p != "" {
		kind, err := classifier.ParseKind(p)
		if err != nil {
			return err
		}
		cfg.Settings.Provider = string(kind)
		cfg.Settings.ProviderIndex = config.ProviderIndex(string(kind))
	}
	if key := strings.TrimSpace(opts.apiKey); key != "" {
		cfg.Settings.APIKey = key
	}

	interactive := isTerminal(out)
	logger, closeLog, err := logging.NewFromConfig(cfg, interactive)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = closeLog()
	}()

	classifierCfg, err := classifier.ConfigFor(cfg)
	if err != nil {
		return err
	}
	cls, err := classifier.New(classifierCfg, logger)
	if err != nil {
		return err
	}

	recorder := metrics.New(string(classifierCfg.Kind))
	undoable := false
	orgOptions := []organizer.Option{
		organizer.WithRecorder(recorder),
		organizer.WithNotifier(notifications.NewService(cfg)),
	}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logging.WarnWithContext(logger, "journal unavailable", "journal_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path"),
				logging.String(logging.FieldImpact, "this run cannot be undone"),
			)
		} else {
			defer store.Close()
			undoable = true
			orgOptions = append(orgOptions, organizer.WithJournal(store))
		}
	}

	org := organizer.New(organizer.Options{
		SourceDir:          dir,
		DestinationDirName: cfg.Organizer.DestinationDirName,
		RunLogName:         filepath.Base(cfg.Logging.RunLog),
		Provider:           string(classifierCfg.Kind),
		RequestInterval:    cfg.RequestInterval(),
		PausePollInterval:  cfg.PausePollInterval(),
	}, cls, logger, orgOptions...)

	controller := worker.New(org, logger)
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if err := controller.Start(runCtx); err != nil {
		return err
	}

	stopSignals := watchSignals(controller, logger)
	defer stopSignals()
	if !opts.noInput {
		go readControlKeys(controller.Done(), cmd.InOrStdin(), controller, out)
	}

	fmt.Fprintf(out, "Organizing %s with %s\n", dir, classifierCfg.Kind)
	renderer := newProgressRenderer(out, interactive)
	var terminal worker.Event
	saved := false
	for event := range controller.Events() {
		if !saved && event.Type != worker.EventFailed {
			saveSettings(ctx.configPath, cfg.Settings, dir, classifierCfg.Kind, logger)
			saved = true
		}
		if event.Type.Terminal() {
			terminal = event
			continue
		}
		renderer.Handle(event)
	}
	renderer.Finish()

	summary, runErr := controller.Wait()
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile"),
		)
	}
	if runErr != nil {
		return fmt.Errorf("organize %s: %w", dir, runErr)
	}
	printSummary(out, terminal.Type, summary, undoable)
	return nil
}

// saveSettings remembers the directory and provider of a run that got past
// its preconditions.
func saveSettings(path string, settings config.Settings, dir string, kind classifier.Kind, logger *slog.Logger) {
	settings.LastDirectory = dir
	settings.Provider = string(kind)
	settings.ProviderIndex = config.ProviderIndex(string(kind))
	if err := config.SaveSettings(path, settings); err != nil {
		logging.WarnWithContext(logger, "settings not saved", "settings_save_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next run will not remember this directory"),
		)
	}
}

// watchSignals maps process signals onto the controller. The returned
// function stops the watch.
func watchSignals(controller *worker.Controller, logger *slog.Logger) func() {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, append(append([]os.Signal{}, cancelSignals...), pauseSignals...)...)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-signals:
				if isPauseSignal(sig) {
					logger.Info("pause toggled by signal", logging.Bool("paused", controller.TogglePause()))
					continue
				}
				logger.Info("cancel requested by signal", logging.String("signal", sig.String()))
				controller.Cancel()
			}
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}

func isPauseSignal(sig os.Signal) bool {
	for _, candidate := range pauseSignals {
		if sig == candidate {
			return true
		}
	}
	return false
}

// readControlKeys maps typed commands onto the controller until the run ends
// or input closes. A blocked read on stdin is released through its read
// deadline when the reader supports one.
func readControlKeys(done <-chan struct{}, in io.Reader, controller *worker.Controller, out io.Writer) {
	if in == nil {
		return
	}
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		var line string
		select {
		case <-done:
			if d, ok := in.(interface{ SetReadDeadline(time.Time) error }); ok {
				_ = d.SetReadDeadline(time.Now())
			}
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "p", "pause", "r", "resume":
			if controller.TogglePause() {
				fmt.Fprintln(out, "Paused; type p to resume")
			} else {
				fmt.Fprintln(out, "Resumed")
			}
		case "c", "cancel", "q":
			fmt.Fprintln(out, "Cancelling after the current file")
			controller.Cancel()
			return
		}
	}
}

func printSummary(out io.Writer, terminal worker.EventType, summary organizer.Summary, undoable bool) {
	status := "Completed"
	if terminal == worker.EventCancelled {
		status = "Cancelled"
	}
	fmt.Fprintf(out, "%s: moved %s (%s), skipped %d of %d in %s\n",
		status,
		pluralFiles(summary.Moved),
		humanize.Bytes(uint64(max(summary.BytesMoved, 0))),
		summary.Skipped,
		summary.Total,
		formatDuration(summary.Duration),
	)
	for _, cat := range category.All() {
		if n := summary.PerCategory[cat]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", categoryLabel(cat), n)
		}
	}
	if summary.Total == 0 {
		fmt.Fprintln(out, "No files to organize")
	}
	if undoable && summary.Moved > 0 {
		fmt.Fprintf(out, "Run %s; undo with `filesort undo %s`\n", shortID(summary.RunID), shortID(summary.RunID))
	}
}
