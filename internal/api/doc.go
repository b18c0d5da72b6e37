// Package api provides the HTTP REST API and WebSocket server for plantcore.
//
// It exposes plant profile management, the latest-reading query path, alert
// listing, manual actuation and the real-time telemetry stream to dashboards.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// The WebSocket hub implements the telemetry pipeline's Broadcaster
// interface: every envelope the pipeline emits is pushed to all connected
// viewers. There is no per-channel subscription model; a plant dashboard
// wants the whole stream.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
