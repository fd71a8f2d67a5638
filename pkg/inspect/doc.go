// Package inspect serves a live view of named cells and the scope tree over
// HTTP and WebSocket.
//
// Routes:
//
//	GET /healthz         liveness probe
//	GET /cells           JSON list of registered cells with their current value
//	GET /cells/{name}    one cell
//	GET /ws/{name}       WebSocket stream of a cell's updates
//	GET /scopes          JSON snapshot of the scope tree
//	GET /metrics         Prometheus exposition, when a gatherer is configured
//
// A slow WebSocket client never holds back the cell: it receives the latest
// value, skipping generations it could not keep up with.
package inspect
