// Package api implements the o2calc estimation service and its HTTP REST API.
//
// Service wraps the pure estimator with everything a request needs: clinical
// hints, configured advisories, the in-memory history and usage metrics. The
// REST API and the WebSocket hub both call it.
//
// New(svc) returns an http.Handler that serves:
//
//	GET /api/v1/health          - status, uptime, history size, stream clients
//	GET /api/v1/estimate?flow=F - EstimateResponse; 400 if F is invalid
//	GET /api/v1/reference       - reference table over the configured flows
//	GET /api/v1/reference.xlsx  - the same table as an XLSX workbook
//	GET /api/v1/devices         - device bands
//	GET /api/v1/history         - recent estimates, newest first
//
// GaugeHandler(svc, format) serves the gauge image for ?flow=F.
//
// All JSON endpoints return 405 for non-GET methods and honour
// "Accept: application/cbor" by encoding the same payload as CBOR.
// Wire types live in pkg/types.
package api
