// Package journal persists organization runs and the moves they performed in
// a SQLite database.
//
// The journal backs the history and undo commands. Every run is recorded when
// it starts and updated when it reaches a terminal state; every successful move
// is appended with its original and final paths so it can be reversed later.
// Journal writes are best effort from the organizer's point of view: a failure
// here is logged but never fails a run.
package journal
