// Package ws implements the WebSocket hub behind the live dashboard.
//
// New(svc, interval) creates a Hub. Hub.Run(ctx) broadcasts the estimate
// history to every client each interval and closes all connections when ctx
// is cancelled. Hub.ServeHTTP upgrades a request, sends the current history
// immediately, then serves the client until it disconnects.
//
// Clients request estimates by sending:
//
//	{"id": "optional correlation id", "flow_rate": 4.5}
//
// and receive one of:
//
//	{"event": "estimate", "id": "...", "data": { /* EstimateResponse */ }}
//	{"event": "error",    "id": "...", "error": "invalid flow rate ..."}
//
// Broadcasts look like:
//
//	{"event": "history", "data": { /* same schema as GET /api/v1/history */ }}
//
// When the client omits an id the hub assigns one. The upgrader accepts all
// origins; apply restrictions at the reverse proxy. Mounted at /ws/stream.
package ws
