// Package telemetry initializes the OpenTelemetry SDK for ImageFlow and
// provides the tracer and span attribute keys used by the generation
// pipeline. When telemetry is disabled the noop providers stay in place.
package telemetry
