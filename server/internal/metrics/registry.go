package metrics

import (
	"bytes"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	nameEstimates     = "o2calc_estimates_total"
	nameInvalidFlow   = "o2calc_invalid_flow_rate_total"
	nameHTTPRequests  = "o2calc_http_requests_total"
	nameStreamClients = "o2calc_stream_clients"
)

// Registry holds the process counters. The zero value is not usable; call New.
type Registry struct {
	mu        sync.Mutex
	estimates map[string]float64 // by device slug
	invalid   float64
	requests  map[string]float64 // by route

	streamClients func() int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		estimates: make(map[string]float64),
		requests:  make(map[string]float64),
	}
}

// ObserveEstimate counts one successful estimate for the given device slug.
func (r *Registry) ObserveEstimate(device string) {
	r.mu.Lock()
	r.estimates[device]++
	r.mu.Unlock()
}

// ObserveInvalid counts one rejected flow rate.
func (r *Registry) ObserveInvalid() {
	r.mu.Lock()
	r.invalid++
	r.mu.Unlock()
}

// ObserveRequest counts one HTTP request to route.
func (r *Registry) ObserveRequest(route string) {
	r.mu.Lock()
	r.requests[route]++
	r.mu.Unlock()
}

// SetStreamClients installs the function sampled for the stream client gauge.
func (r *Registry) SetStreamClients(fn func() int) {
	r.mu.Lock()
	r.streamClients = fn
	r.mu.Unlock()
}

// Gather returns the current metric families, sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	estimates := labelled("device", r.estimates)
	requests := labelled("route", r.requests)
	invalid := r.invalid
	clientsFn := r.streamClients
	r.mu.Unlock()

	mfs := []*dto.MetricFamily{
		{
			Name:   ptr(nameEstimates),
			Help:   ptr("Successful oxygen estimates by recommended device."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: estimates,
		},
		{
			Name:   ptr(nameInvalidFlow),
			Help:   ptr("Flow rates rejected by validation."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{Counter: &dto.Counter{Value: ptr(invalid)}}},
		},
		{
			Name:   ptr(nameHTTPRequests),
			Help:   ptr("HTTP requests by route."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: requests,
		},
	}
	if clientsFn != nil {
		mfs = append(mfs, &dto.MetricFamily{
			Name:   ptr(nameStreamClients),
			Help:   ptr("Connected WebSocket dashboard clients."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: ptr(float64(clientsFn()))}}},
		})
	}

	sort.Slice(mfs, func(i, j int) bool { return mfs[i].GetName() < mfs[j].GetName() })
	return mfs
}

// ServeHTTP writes the text exposition of all metric families.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var buf bytes.Buffer
	for _, mf := range r.Gather() {
		// Families without samples are not valid exposition.
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// labelled converts a value-by-label map into counter samples sorted by label.
func labelled(label string, values map[string]float64) []*dto.Metric {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: ptr(label), Value: ptr(k)}},
			Counter: &dto.Counter{Value: ptr(values[k])},
		})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
