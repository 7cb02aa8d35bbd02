// Package services defines shared utilities consumed by the organizer, the
// classifier backends, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and file names for
//     logging.
//   - Structured error markers plus the Wrap helper that let callers tell
//     configuration problems apart from run-level failures.
//
// Use these helpers when wiring new run logic so error handling and log shape
// stay uniform across packages.
package services
