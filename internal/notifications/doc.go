// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// the [notifications] section and degrades to a no-op when no topic is set.
// Enumerated event types cover the end of a run (completed, cancelled, failed)
// so callers emit consistent messages without duplicating HTTP glue.
package notifications
