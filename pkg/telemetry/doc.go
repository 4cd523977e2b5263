// Package telemetry groups the observability subsystems for Callisto:
// structured logging (telemetry/logging) and Prometheus metrics
// (telemetry/metrics).
package telemetry
