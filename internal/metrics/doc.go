// Package metrics records the outcome of a maintenance run as prometheus
// gauges and writes them for the node_exporter textfile collector.
package metrics
