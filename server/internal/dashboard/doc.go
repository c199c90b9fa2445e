// Package dashboard renders the browser front end served at "/".
//
// The page is a single html/template embedded in the binary. Everything it
// shows comes from two explicit values: a PageConfig (title, slider steps,
// default flow) derived from the ui section of config.yaml, and a View holding
// the estimate, reference table and any input error for this request. Handler
// keeps the current PageConfig behind an atomic pointer so a config reload
// swaps it without locking requests out.
//
// The page works without JavaScript through GET /?flow=F. With JavaScript it
// opens /ws/stream and updates the result panel in place.
package dashboard
