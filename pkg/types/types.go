package types

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string  `json:"status"`
	UptimeSec    float64 `json:"uptime_sec"`
	HistoryCount int     `json:"history_count"`
	StreamCount  int     `json:"stream_clients"`
}

// EstimateResponse is the payload for GET /api/v1/estimate and the data of a
// WebSocket "estimate" event.
type EstimateResponse struct {
	FlowRate    float64    `json:"flow_rate"`
	O2Pct       float64    `json:"o2_pct"`
	Device      string     `json:"device"`
	DeviceShort string     `json:"device_short"`
	DeviceSlug  string     `json:"device_slug"`
	Hints       []Hint     `json:"hints"`
	Advisories  []Advisory `json:"advisories"`
}

// Hint is one clinical consideration attached to an estimate.
type Hint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical".
	Level string `json:"level"`
	// Title is a short label.
	Title string `json:"title"`
	// Detail is the full explanation.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with the hint.
	Value *float64 `json:"value,omitempty"`
}

// Advisory is a configured rule that fired for an estimate.
type Advisory struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Value    float64 `json:"value"`
}

// ReferenceRow is one row of GET /api/v1/reference.
type ReferenceRow struct {
	FlowRate float64 `json:"flow_rate"`
	O2Pct    float64 `json:"o2_pct"`
	Device   string  `json:"device"`
}

// DeviceBand is one entry of GET /api/v1/devices. MaxFlow is nil for the
// open-ended high-flow band.
type DeviceBand struct {
	Device  string   `json:"device"`
	Slug    string   `json:"slug"`
	MinFlow float64  `json:"min_flow_exclusive"`
	MaxFlow *float64 `json:"max_flow_inclusive"`
}

// HistoryEntry is one recorded estimate.
type HistoryEntry struct {
	ID         string  `json:"id"`
	FlowRate   float64 `json:"flow_rate"`
	O2Pct      float64 `json:"o2_pct"`
	Device     string  `json:"device"`
	RecordedAt string  `json:"recorded_at"` // RFC3339
}

// HistoryResponse is the payload for GET /api/v1/history and the data of a
// WebSocket "history" event.
type HistoryResponse struct {
	Entries     []HistoryEntry `json:"entries"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// ErrorResponse is the JSON error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
