// Package telemetry aggregates episode steps into per-day windows, raises
// plant-condition alerts, times the control loop and writes CSV output.
package telemetry
