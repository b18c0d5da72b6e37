// Package alert persists the advisory outcomes that raised an alarm.
//
// Alerts are append-only: the telemetry pipeline records one row per
// critical advisory, and the API exposes listing and a mark-as-read flag
// for dashboards. History is never rewritten.
package alert
