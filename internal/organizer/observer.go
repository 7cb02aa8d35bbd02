package organizer

import "filesort/internal/category"

// Controls exposes the pause and cancel requests of whoever drives the run.
// They are read only at file boundaries.
type Controls interface {
	Paused() bool
	Cancelled() bool
}

// Observer receives progress notifications in processing order. Calls are
// made from the run's goroutine and must not block for long. StateChanged
// reports pausing and resuming at file boundaries.
type Observer interface {
	StateChanged(state State)
	FileStarted(name string)
	Progress(percent int)
	FileDone(result FileResult)
}

// FileResult describes what happened to one file.
type FileResult struct {
	Name        string
	Source      string
	Destination string
	Category    category.Category
	Size        int64
	Moved       bool
	Err         error
}

type noControls struct{}

func (noControls) Paused() bool    { return false }
func (noControls) Cancelled() bool { return false }

type nopObserver struct{}

func (nopObserver) StateChanged(State)  {}
func (nopObserver) FileStarted(string)  {}
func (nopObserver) Progress(int)        {}
func (nopObserver) FileDone(FileResult) {}
