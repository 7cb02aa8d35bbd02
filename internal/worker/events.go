package worker

import "filesort/internal/organizer"

// EventType identifies a controller event.
type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventFileStarted  EventType = "file_started"
	EventProgress     EventType = "progress"
	EventFileDone     EventType = "file_done"
	EventCompleted    EventType = "completed"
	EventCancelled    EventType = "cancelled"
	EventFailed       EventType = "failed"
)

// Terminal reports whether the event ends the stream.
func (t EventType) Terminal() bool {
	switch t {
	case EventCompleted, EventCancelled, EventFailed:
		return true
	default:
		return false
	}
}

// Event is one notification from a running organization pass. Only the fields
// relevant to Type are set.
type Event struct {
	Type    EventType
	File    string
	Percent int
	Result  organizer.FileResult
	Summary organizer.Summary
	// State is the run state entered, for EventStateChanged.
	State organizer.State
	// Message carries the failure text for EventFailed.
	Message string
}
