// Package preflight provides readiness checks for the provider and the
// filesystem paths that filesort writes to.
//
// The CLI "filesort doctor" command runs RunAll and renders the results. Each
// check is gated by its config toggle -- disabled features are skipped.
package preflight
