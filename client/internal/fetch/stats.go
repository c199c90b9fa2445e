package fetch

import (
	"context"
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Server metric names read by Stats.
const (
	metricEstimates     = "o2calc_estimates_total"
	metricInvalidFlow   = "o2calc_invalid_flow_rate_total"
	metricHTTPRequests  = "o2calc_http_requests_total"
	metricStreamClients = "o2calc_stream_clients"
)

// Stats is a summary of the server's usage counters.
type Stats struct {
	// Estimates is the estimate count per device slug.
	Estimates map[string]float64
	// Invalid is the number of rejected flow rates.
	Invalid float64
	// Requests is the request count per API route.
	Requests map[string]float64
	// StreamClients is the number of connected WebSocket clients.
	StreamClients float64
}

// TotalEstimates returns the estimate count over all devices.
func (s Stats) TotalEstimates() float64 {
	var total float64
	for _, v := range s.Estimates {
		total += v
	}
	return total
}

// Stats scrapes the server's /metrics endpoint.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	const path = "/metrics"
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain))).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch: get %s: %w", path, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return Stats{}, errStatus(path, resp.StatusCode())
	}

	mfs, err := parseMetrics(body)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch: %s: %w", path, err)
	}
	return Stats{
		Estimates:     byLabel(mfs[metricEstimates], "device"),
		Invalid:       sumFamily(mfs[metricInvalidFlow]),
		Requests:      byLabel(mfs[metricHTTPRequests], "route"),
		StreamClients: sumFamily(mfs[metricStreamClients]),
	}, nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil (metric not present in the scrape).
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		total += value(m)
	}
	return total
}

// byLabel sums mf per value of the named label.
func byLabel(mf *dto.MetricFamily, label string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		key := ""
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				key = lp.GetValue()
				break
			}
		}
		out[key] += value(m)
	}
	return out
}

func value(m *dto.Metric) float64 {
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	}
	return 0
}
