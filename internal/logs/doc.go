// Package logs reads the human-readable run log written by internal/logging.
//
// The run log stores each entry as a header line followed by indented
// "    - key: value" detail lines. Tail groups those lines back into records,
// keeps only the last N (optionally those matching a substring such as a run
// id or file name), and supports follow mode for `filesort logs --follow`.
// Memory use is bounded by the requested record count.
package logs
