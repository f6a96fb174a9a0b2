// Package tracing wraps OpenTelemetry for the engine. Runs and node attempts
// are recorded as spans; without Init the global no-op provider is used and
// spans cost nothing.
package tracing
