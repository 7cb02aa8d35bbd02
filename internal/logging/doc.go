// Package logging assembles structured slog loggers and formatting helpers used
// across filesort.
//
// It owns the console and JSON handlers, routes output to the terminal and to
// the human-readable run log, and exposes context-aware helpers so organizer
// code automatically tags log lines with the run ID, stage, and file name. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
