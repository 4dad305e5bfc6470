// Package observe provides logging, metrics and tracing for heritage
// operations and their upstream calls.
//
// It is a pure instrumentation library: no transport and no I/O beyond
// exporter setup. NewObserver builds the OpenTelemetry providers from
// Config; NewMetrics, NewTracer and Middleware bind them to Operations.
package observe
