// Package organizer runs one organization pass over a source directory.
//
// A run snapshots the eligible files, then for each one in name order checks
// for cancellation, waits while paused, paces itself against the provider's
// rate limit, classifies the file, and moves it into
// <source>/<destination>/<category>/ without ever overwriting an existing
// file. Per-file problems are logged and the file is skipped; only a failed scan or a
// destination root that cannot be prepared or locked fails the run. Progress is reported to an
// Observer and, when configured, every move is written to the journal so the
// run can be undone later.
package organizer
