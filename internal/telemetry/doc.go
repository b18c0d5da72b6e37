// Package telemetry implements the plant telemetry processing pipeline for
// plantcore.
//
// Every message a plant node publishes passes through the same sequence of
// stages, each in its own file:
//
//	┌────────────────────────────────────────────────────────┐
//	│                Gateway (gateway.go)                     │
//	│  Subscribes planta/+/lecturas, planta/+/data,           │
//	│  planta/+/status and demuxes by topic channel           │
//	│        │                                                │
//	│        ▼                                                │
//	│  ┌──────────────────────────────────────────────┐      │
//	│  │  Pipeline (pipeline.go)                       │      │
//	│  │  1. Normalize payload   (normalize.go)        │      │
//	│  │  2. QC bounds check     (qc.go)               │      │
//	│  │  3. Advisory evaluation (advisor.go)          │      │
//	│  │  4. Side effects: alert store, actuation,     │      │
//	│  │     broadcast, rate-limited email             │      │
//	│  │  5. Time-series write + latest cache update   │      │
//	│  └──────────────────────────────────────────────┘      │
//	└────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Reading: One normalized telemetry sample (reading.go)
//   - Advisor: Threshold evaluator producing severities and side effects
//   - Cooldown: Per (plant, severity) email rate limiter
//   - LatestCache: In-memory snapshot of each plant's most recent reading
//   - Pipeline: Orchestrator wiring the stages to their collaborators
//   - Gateway: MQTT subscription front door
//
// # Processing Guarantees
//
// Side effects are independently best-effort. A failed time-series write never
// blocks the alert write or the broadcast, and no failure in any stage crashes
// the ingestion loop. EVENT messages (pump state changes) bypass QC and
// advisory evaluation entirely but are still persisted and cached.
//
// # Thread Safety
//
// The broker client invokes handlers concurrently, so Pipeline, Cooldown and
// LatestCache are all safe for concurrent use.
package telemetry
