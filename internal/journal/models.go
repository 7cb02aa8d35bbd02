package journal

import "time"

// Run is the journal's view of one organization run.
type Run struct {
	ID              string
	SourceDir       string
	DestinationRoot string
	Provider        string
	State           string
	Total           int
	Processed       int
	Moved           int
	Skipped         int
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Finished reports whether the run reached a terminal state.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration is the wall time between start and finish, or zero while running.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Move records one file relocation.
type Move struct {
	ID              int64
	RunID           string
	SourcePath      string
	DestinationPath string
	Category        string
	MovedAt         time.Time
	UndoneAt        time.Time
}

// Undone reports whether the move has been reversed.
func (m Move) Undone() bool {
	return !m.UndoneAt.IsZero()
}
