// Package device manages plant device profiles.
//
// A profile binds a plant node's MQTT identity (the plantId segment of its
// topics) to its metadata and advisory thresholds. Thresholds are nullable:
// a nil bound means the metric has no limit for that plant and the
// configured defaults apply instead.
//
// # Architecture
//
// The package follows a repository pattern:
//
//	Registry (cached, thread-safe) → Repository (interface) → SQLiteRepository
//
// The Registry wraps a Repository with an in-memory cache so the telemetry
// pipeline can resolve profiles on every reading without touching SQLite.
// Readings from unknown plants are still processed with default thresholds,
// so a missing profile is never fatal to the pipeline.
package device
