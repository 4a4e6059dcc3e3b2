// Package telemetry wraps OpenTelemetry tracer-provider initialization,
// giving the memory service a centralized TracerProvider configuration.
// When telemetry is disabled, a noop provider is used and nothing is
// exported.
package telemetry
