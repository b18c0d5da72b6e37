// Package influxdb provides time-series persistence for plant telemetry.
//
// Normalized readings are written to the sensores_planta measurement,
// tagged by plant_id and status_qc so dashboards can filter valid data
// from out-of-range or errored samples.
//
// Writes are non-blocking: points are batched by the client and flushed
// on an interval, so telemetry ingestion never stalls on the
// time-series backend. Async write failures are surfaced through the
// SetOnError callback.
package influxdb
