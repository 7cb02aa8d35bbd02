// Package worker runs a single organization pass in the background and turns
// its progress into an ordered event stream for the presentation layer.
//
// The Controller owns the pause and cancel flags that the organizer reads at
// file boundaries. Events arrive on one channel in processing order and the
// stream always ends with exactly one terminal event before it closes.
package worker
