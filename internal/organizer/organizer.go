package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"filesort/internal/category"
	"filesort/internal/fileutil"
	"filesort/internal/journal"
	"filesort/internal/logging"
	"filesort/internal/notifications"
	"filesort/internal/scanner"
	"filesort/internal/services"
)

const (
	defaultDestinationDirName = "organized"
	defaultPausePollInterval  = 100 * time.Millisecond
	lockFileName              = ".filesort.lock"
)

// Classifier assigns a category to a file. Implementations never fail; an
// unusable answer is reported as category.Other.
type Classifier interface {
	Classify(ctx context.Context, rec scanner.FileRecord) category.Category
}

// Journal persists runs and moves.
type Journal interface {
	BeginRun(ctx context.Context, run journal.Run) error
	FinishRun(ctx context.Context, run journal.Run) error
	RecordMove(ctx context.Context, move journal.Move) (int64, error)
}

// Recorder receives run metrics.
type Recorder interface {
	ObserveClassification(category string, duration time.Duration)
	FileMoved(category string)
	FileSkipped(category string)
	RunFinished(state string, duration time.Duration, finishedAt time.Time)
}

// Options configures a run.
type Options struct {
	SourceDir          string
	DestinationDirName string
	// RunLogName is the base name of the run log, which is never organized.
	RunLogName        string
	Provider          string
	RequestInterval   time.Duration
	PausePollInterval time.Duration
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID           string
	SourceDir       string
	DestinationRoot string
	State           State
	Total           int
	Processed       int
	Moved           int
	Skipped         int
	BytesMoved      int64
	PerCategory     map[category.Category]int
	StartedAt       time.Time
	Duration        time.Duration
}

// Organizer executes organization runs.
type Organizer struct {
	opts       Options
	classifier Classifier
	logger     *slog.Logger
	journal    Journal
	recorder   Recorder
	notifier   notifications.Service
	now        func() time.Time
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithJournal records runs and moves in j.
func WithJournal(j Journal) Option {
	return func(o *Organizer) {
		if j != nil {
			o.journal = j
		}
	}
}

// WithRecorder reports metrics to r.
func WithRecorder(r Recorder) Option {
	return func(o *Organizer) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithNotifier publishes the end of each run to n.
func WithNotifier(n notifications.Service) Option {
	return func(o *Organizer) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithClock overrides the time source used for collision names and timings.
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs an Organizer. Preconditions are checked by Run.
func New(opts Options, classifier Classifier, logger *slog.Logger, options ...Option) *Organizer {
	if strings.TrimSpace(opts.DestinationDirName) == "" {
		opts.DestinationDirName = defaultDestinationDirName
	}
	if opts.PausePollInterval <= 0 {
		opts.PausePollInterval = defaultPausePollInterval
	}
	if opts.RequestInterval < 0 {
		opts.RequestInterval = 0
	}
	o := &Organizer{
		opts:       opts,
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "organizer"),
		now:        time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Run organizes the source directory. It returns a nil error for completed and
// cancelled runs; a run that could not prepare its destination returns the
// failure alongside a Summary in StateFailed. Precondition failures are
// reported as services.ErrConfiguration before anything on disk changes.
// Cancelling ctx or controls takes effect at the next file boundary; the file
// in flight is still classified and moved.
func (o *Organizer) Run(ctx context.Context, controls Controls, observer Observer) (Summary, error) {
	if controls == nil {
		controls = noControls{}
	}
	if observer == nil {
		observer = nopObserver{}
	}

	summary := Summary{
		RunID:       uuid.NewString(),
		State:       StateIdle,
		PerCategory: make(map[category.Category]int),
		StartedAt:   o.now(),
	}

	sourceDir, err := o.checkPreconditions()
	if err != nil {
		return summary, err
	}
	summary.SourceDir = sourceDir
	summary.DestinationRoot = filepath.Join(sourceDir, o.opts.DestinationDirName)

	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, o.logger)

	paths, err := scanner.Scan(sourceDir, summary.DestinationRoot, o.opts.RunLogName)
	if err != nil {
		return o.fail(ctx, summary, "check that the source directory is readable",
			services.Wrap(services.ErrValidation, "scan", "list source directory", "", err))
	}
	summary.Total = len(paths)
	summary.State = StateRunning
	if summary.Total == 0 {
		o.beginJournal(ctx, summary)
		logger.Info("no files to organize", logging.String("source_dir", sourceDir))
		return o.finish(ctx, summary, StateCompleted), nil
	}

	if err := os.MkdirAll(summary.DestinationRoot, 0o755); err != nil {
		return o.fail(ctx, summary, "check that the source directory is writable",
			services.Wrap(services.ErrValidation, "organize", "create destination root",
				fmt.Sprintf("cannot create %s; check permissions on the source directory", summary.DestinationRoot), err))
	}

	lock := flock.New(filepath.Join(summary.DestinationRoot, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return o.fail(ctx, summary, "check that the organized folder is writable",
			services.Wrap(services.ErrValidation, "organize", "acquire run lock", "", err))
	}
	if !locked {
		return o.fail(ctx, summary, "wait for the other run to finish",
			services.Wrap(services.ErrConfiguration, "organize", "acquire run lock",
				fmt.Sprintf("another run is already organizing %s", sourceDir), nil))
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()
	o.beginJournal(ctx, summary)

	logger.Info("organization started",
		logging.String("source_dir", sourceDir),
		logging.String("destination_root", summary.DestinationRoot),
		logging.Int("total_files", summary.Total),
		logging.String(logging.FieldProvider, o.opts.Provider),
		logging.Duration("request_interval", o.opts.RequestInterval),
	)

	var limiter *rate.Limiter
	if o.opts.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(o.opts.RequestInterval), 1)
	}

	for _, path := range paths {
		if o.cancelled(ctx, controls) {
			return o.finish(ctx, summary, StateCancelled), nil
		}
		if !o.waitWhilePaused(ctx, controls, observer, &summary, logger) {
			return o.finish(ctx, summary, StateCancelled), nil
		}
		if !o.waitForSlot(ctx, controls, limiter) {
			return o.finish(ctx, summary, StateCancelled), nil
		}

		name := filepath.Base(path)
		observer.FileStarted(name)
		result := o.processFile(ctx, summary, path)

		summary.Processed++
		if result.Moved {
			summary.Moved++
			summary.BytesMoved += result.Size
			summary.PerCategory[result.Category]++
		} else {
			summary.Skipped++
		}
		observer.Progress(summary.Processed * 100 / summary.Total)
		observer.FileDone(result)
	}

	if o.cancelled(ctx, controls) {
		return o.finish(ctx, summary, StateCancelled), nil
	}
	return o.finish(ctx, summary, StateCompleted), nil
}

func (o *Organizer) checkPreconditions() (string, error) {
	if o.classifier == nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate", "classifier required", nil)
	}
	name := o.opts.DestinationDirName
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate",
			fmt.Sprintf("destination folder name %q must be a plain name", name), nil)
	}
	raw := strings.TrimSpace(o.opts.SourceDir)
	if raw == "" {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate", "source directory required", nil)
	}
	sourceDir, err := filepath.Abs(raw)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate", "resolve source directory", err)
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate",
			fmt.Sprintf("source directory %s is not accessible", sourceDir), err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate",
			fmt.Sprintf("source %s is not a directory", sourceDir), nil)
	}
	return sourceDir, nil
}

// processFile classifies and moves one file. Failures are logged and reported
// in the result; they never stop the run.
func (o *Organizer) processFile(ctx context.Context, summary Summary, path string) FileResult {
	name := filepath.Base(path)
	result := FileResult{Name: name, Source: path}
	ctx = services.WithFile(ctx, name)

	rec, err := scanner.Inspect(path)
	if err != nil {
		return o.skip(ctx, result, "inspect", "file_inspect_failed", "the file may have been removed or replaced during the run", err)
	}
	result.Size = rec.Size

	// The request runs to completion even when the run is cancelled meanwhile;
	// the provider client's timeout bounds it.
	classifyCtx := context.WithoutCancel(services.WithStage(ctx, "classify"))
	started := o.now()
	result.Category = o.classifier.Classify(classifyCtx, rec)
	if !result.Category.Valid() {
		result.Category = category.Other
	}
	if o.recorder != nil {
		o.recorder.ObserveClassification(string(result.Category), o.now().Sub(started))
	}

	dir := filepath.Join(summary.DestinationRoot, string(result.Category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return o.skip(ctx, result, "move", "category_dir_failed", "check permissions on the organized folder", err)
	}

	target, err := resolveTarget(dir, name, o.now())
	if err == nil {
		err = fileutil.MoveFile(path, target)
		if errors.Is(err, os.ErrExist) {
			if target, err = resolveTarget(dir, name, o.now()); err == nil {
				err = fileutil.MoveFile(path, target)
			}
		}
	}
	if err != nil {
		return o.skip(ctx, result, "move", "file_move_failed", "check permissions and free space in the organized folder", err)
	}

	result.Destination = target
	result.Moved = true
	if o.recorder != nil {
		o.recorder.FileMoved(string(result.Category))
	}
	o.recordMove(ctx, summary.RunID, result)
	logging.WithContext(ctx, o.logger).Info("file moved",
		logging.String(logging.FieldCategory, string(result.Category)),
		logging.String("destination", target),
	)
	return result
}

func (o *Organizer) skip(ctx context.Context, result FileResult, stage, eventType, hint string, err error) FileResult {
	result.Err = err
	logger := logging.WithContext(services.WithStage(ctx, stage), o.logger)
	logging.WarnWithContext(logger, "file skipped", eventType,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "file left in place"),
	)
	if o.recorder != nil {
		o.recorder.FileSkipped(string(result.Category))
	}
	return result
}

func (o *Organizer) cancelled(ctx context.Context, controls Controls) bool {
	return controls.Cancelled() || ctx.Err() != nil
}

// waitWhilePaused blocks while the run is paused, polling at the configured
// interval. It returns false when the run was cancelled meanwhile.
func (o *Organizer) waitWhilePaused(ctx context.Context, controls Controls, observer Observer, summary *Summary, logger *slog.Logger) bool {
	if !controls.Paused() {
		return true
	}
	summary.State = StatePaused
	observer.StateChanged(StatePaused)
	logger.Info("run paused", logging.Int("processed", summary.Processed))
	for controls.Paused() {
		if o.cancelled(ctx, controls) {
			return false
		}
		if !sleepContext(ctx, o.opts.PausePollInterval) {
			return false
		}
	}
	if o.cancelled(ctx, controls) {
		return false
	}
	summary.State = StateRunning
	observer.StateChanged(StateRunning)
	logger.Info("run resumed")
	return true
}

// waitForSlot honours the request interval. The wait is sliced by the pause
// poll interval so a cancel request is noticed without waiting out the full
// delay. It returns false when the run was cancelled meanwhile.
func (o *Organizer) waitForSlot(ctx context.Context, controls Controls, limiter *rate.Limiter) bool {
	if limiter == nil {
		return true
	}
	reservation := limiter.Reserve()
	deadline := time.Now().Add(reservation.Delay())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if o.cancelled(ctx, controls) {
			reservation.Cancel()
			return false
		}
		if !sleepContext(ctx, min(remaining, o.opts.PausePollInterval)) {
			reservation.Cancel()
			return false
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (o *Organizer) finish(ctx context.Context, summary Summary, state State) Summary {
	ctx = context.WithoutCancel(ctx)
	summary.State = state
	finishedAt := o.now()
	summary.Duration = finishedAt.Sub(summary.StartedAt)
	logger := logging.WithContext(ctx, o.logger)

	attrs := []logging.Attr{
		logging.String("state", string(state)),
		logging.Int("total_files", summary.Total),
		logging.Int("processed", summary.Processed),
		logging.Int("moved", summary.Moved),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	}
	for _, cat := range category.All() {
		if n := summary.PerCategory[cat]; n > 0 {
			attrs = append(attrs, logging.Int("category_"+string(cat), n))
		}
	}
	if state == StateCancelled {
		logger.Info("organization cancelled", logging.Args(attrs...)...)
	} else {
		logger.Info("organization completed", logging.Args(attrs...)...)
	}

	o.finishJournal(ctx, summary, finishedAt)
	if o.recorder != nil {
		o.recorder.RunFinished(string(state), summary.Duration, finishedAt)
	}
	event := notifications.EventRunCompleted
	if state == StateCancelled {
		event = notifications.EventRunCancelled
	}
	o.notify(ctx, event, summary, nil)
	return summary
}

func (o *Organizer) fail(ctx context.Context, summary Summary, hint string, err error) (Summary, error) {
	ctx = context.WithoutCancel(ctx)
	summary.State = StateFailed
	finishedAt := o.now()
	summary.Duration = finishedAt.Sub(summary.StartedAt)
	logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "organization failed", "run_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
	if o.recorder != nil {
		o.recorder.RunFinished(string(StateFailed), summary.Duration, finishedAt)
	}
	o.notify(ctx, notifications.EventRunFailed, summary, err)
	return summary, err
}

func (o *Organizer) notify(ctx context.Context, event notifications.Event, summary Summary, runErr error) {
	if o.notifier == nil {
		return
	}
	payload := notifications.Payload{
		"directory": summary.SourceDir,
		"moved":     summary.Moved,
		"skipped":   summary.Skipped,
		"total":     summary.Total,
		"duration":  summary.Duration,
	}
	if runErr != nil {
		payload["error"] = runErr
	}
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run outcome was not pushed"),
		)
	}
}

func (o *Organizer) beginJournal(ctx context.Context, summary Summary) {
	if o.journal == nil {
		return
	}
	err := o.journal.BeginRun(ctx, journal.Run{
		ID:              summary.RunID,
		SourceDir:       summary.SourceDir,
		DestinationRoot: summary.DestinationRoot,
		Provider:        o.opts.Provider,
		State:           string(StateRunning),
		Total:           summary.Total,
		StartedAt:       summary.StartedAt,
	})
	if err != nil {
		o.journalWarning(ctx, "journal run start failed", err)
	}
}

func (o *Organizer) finishJournal(ctx context.Context, summary Summary, finishedAt time.Time) {
	if o.journal == nil {
		return
	}
	err := o.journal.FinishRun(ctx, journal.Run{
		ID:         summary.RunID,
		State:      string(summary.State),
		Total:      summary.Total,
		Processed:  summary.Processed,
		Moved:      summary.Moved,
		Skipped:    summary.Skipped,
		FinishedAt: finishedAt,
	})
	if err != nil {
		o.journalWarning(ctx, "journal run finish failed", err)
	}
}

func (o *Organizer) recordMove(ctx context.Context, runID string, result FileResult) {
	if o.journal == nil {
		return
	}
	_, err := o.journal.RecordMove(ctx, journal.Move{
		RunID:           runID,
		SourcePath:      result.Source,
		DestinationPath: result.Destination,
		Category:        string(result.Category),
		MovedAt:         o.now(),
	})
	if err != nil {
		o.journalWarning(ctx, "journal move record failed", err)
	}
}

func (o *Organizer) journalWarning(ctx context.Context, msg string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, o.logger), msg, "journal_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check journal.path permissions and free space"),
		logging.String(logging.FieldImpact, "undo will not cover this run"),
	)
}
