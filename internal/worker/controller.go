package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"filesort/internal/logging"
	"filesort/internal/organizer"
	"filesort/internal/services"
)

const defaultEventBuffer = 64

// Runner executes one organization pass.
type Runner interface {
	Run(ctx context.Context, controls organizer.Controls, observer organizer.Observer) (organizer.Summary, error)
}

// Controller drives a Runner on a background goroutine. Callers must drain
// Events until it closes; a full buffer holds the run at the next event.
type Controller struct {
	runner Runner
	logger *slog.Logger

	paused    atomic.Bool
	cancelled atomic.Bool

	events chan Event
	done   chan struct{}

	mu      sync.Mutex
	started bool
	summary organizer.Summary
	err     error
}

// New constructs a Controller for runner.
func New(runner Runner, logger *slog.Logger) *Controller {
	return &Controller{
		runner: runner,
		logger: logging.NewComponentLogger(logger, "worker"),
		events: make(chan Event, defaultEventBuffer),
		done:   make(chan struct{}),
	}
}

// Start launches the run. A Controller runs at most once.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runner == nil {
		return services.Wrap(services.ErrConfiguration, "worker", "start", "runner required", nil)
	}
	if c.started {
		return services.Wrap(services.ErrValidation, "worker", "start", "controller already started", nil)
	}
	c.started = true
	go c.run(ctx)
	return nil
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.events)

	summary, err := c.runner.Run(ctx, c, observer{events: c.events})

	terminal := Event{Summary: summary}
	switch {
	case err != nil:
		terminal.Type = EventFailed
		terminal.Message = err.Error()
	case summary.State == organizer.StateCancelled:
		terminal.Type = EventCancelled
	default:
		terminal.Type = EventCompleted
	}
	c.logger.Debug("run finished",
		logging.String("event", string(terminal.Type)),
		logging.String(logging.FieldRunID, summary.RunID),
	)

	c.mu.Lock()
	c.summary = summary
	c.err = err
	c.mu.Unlock()

	c.events <- terminal
}

// Events returns the event stream. It is closed after the terminal event.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Done is closed once the run has ended and its terminal event was sent.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the run ends and returns its summary and error.
func (c *Controller) Wait() (organizer.Summary, error) {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return organizer.Summary{}, services.Wrap(services.ErrValidation, "worker", "wait", "controller not started", nil)
	}
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, c.err
}

// Pause holds the run before the next file.
func (c *Controller) Pause() {
	if !c.paused.Swap(true) {
		c.logger.Debug("pause requested")
	}
}

// Resume lets a paused run continue.
func (c *Controller) Resume() {
	if c.paused.Swap(false) {
		c.logger.Debug("resume requested")
	}
}

// TogglePause flips the pause flag and returns the new value.
func (c *Controller) TogglePause() bool {
	for {
		current := c.paused.Load()
		if c.paused.CompareAndSwap(current, !current) {
			return !current
		}
	}
}

// Cancel stops the run before the next file. The file being processed is
// finished first.
func (c *Controller) Cancel() {
	if !c.cancelled.Swap(true) {
		c.logger.Debug("cancel requested")
	}
}

// Paused reports whether a pause is requested.
func (c *Controller) Paused() bool {
	return c.paused.Load()
}

// Cancelled reports whether a cancel is requested.
func (c *Controller) Cancelled() bool {
	return c.cancelled.Load()
}

type observer struct {
	events chan<- Event
}

func (o observer) StateChanged(state organizer.State) {
	o.events <- Event{Type: EventStateChanged, State: state}
}

func (o observer) FileStarted(name string) {
	o.events <- Event{Type: EventFileStarted, File: name}
}

func (o observer) Progress(percent int) {
	o.events <- Event{Type: EventProgress, Percent: percent}
}

func (o observer) FileDone(result organizer.FileResult) {
	o.events <- Event{Type: EventFileDone, File: result.Name, Result: result}
}
