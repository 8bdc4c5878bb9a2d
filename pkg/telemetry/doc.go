// Package telemetry provides the structured logger and Prometheus metrics used
// across the engine. Both degrade to no-ops when disabled so library callers
// never have to nil-check them.
package telemetry
