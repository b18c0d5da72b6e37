// Package actuator dispatches control commands to plant nodes.
//
// Commands are published as {"cmd": "..."} envelopes on the node's
// planta/{plantId}/command topic with QoS 1 (acknowledged, at-least-once).
// The broker connection is a precondition: sending while disconnected fails
// with ErrNotConnected, which callers log and absorb — a missed command
// never takes down the telemetry pipeline.
package actuator
