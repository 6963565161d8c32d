// Package metrics defines the sinks that observe the dispatcher from the
// outside: every winning value change and every newly seen source can be
// forwarded to Prometheus, InfluxDB or several sinks at once through
// MultiSink. The factory helpers build sinks from configuration and return a
// MultiSink automatically when several are configured.
package metrics
