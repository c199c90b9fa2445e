// Package config loads the o2calc server configuration from config.yaml.
//
// Sections:
//   - server.http_port   - port for the dashboard, REST API and WebSocket (default 8080)
//   - server.log         - level (debug|info|warn|error) and format (json|text)
//   - server.auth        - mode (apikey|none), key_env, header (default "x-api-key")
//   - server.history     - ttl (default 30m) and max_entries (default 200)
//   - server.stream      - interval of the WebSocket history broadcast (default 5s)
//   - ui                 - page title/subtitle, slider and input steps, default
//     flow, reference_flows and gauge_ticks
//   - advisories         - rules evaluated against every estimate
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) reloads the file on change via fsnotify.
package config
