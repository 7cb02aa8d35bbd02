// Package metrics records per-run Prometheus counters and histograms and
// exports them in the node_exporter textfile format so a scheduled filesort
// run can be scraped after it exits.
package metrics
