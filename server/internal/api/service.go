package api

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/o2calc/o2calc/pkg/clinical"
	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
	"github.com/o2calc/o2calc/server/internal/advisory"
	"github.com/o2calc/o2calc/server/internal/metrics"
	"github.com/o2calc/o2calc/server/internal/store"
)

// Service runs estimates and keeps the per-process state around them.
// It is safe for concurrent use.
type Service struct {
	history  *store.Store
	advisor  *advisory.Engine
	metrics  *metrics.Registry
	started  time.Time
	clientFn func() int

	mu             sync.RWMutex
	referenceFlows []float64
	gaugeTicks     []float64
}

// NewService creates a Service with the default reference flows and gauge
// ticks.
func NewService(history *store.Store, advisor *advisory.Engine, reg *metrics.Registry) *Service {
	return &Service{
		history:        history,
		advisor:        advisor,
		metrics:        reg,
		started:        time.Now(),
		referenceFlows: oxygen.DefaultReferenceFlows,
		gaugeTicks:     oxygen.DefaultGaugeTicks,
	}
}

// SetReference replaces the reference flows and gauge ticks. Nil slices keep
// the current value.
func (s *Service) SetReference(flows, ticks []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flows != nil {
		s.referenceFlows = append([]float64(nil), flows...)
	}
	if ticks != nil {
		s.gaugeTicks = append([]float64(nil), ticks...)
	}
}

// GaugeTicks returns the configured gauge ticks.
func (s *Service) GaugeTicks() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gaugeTicks
}

// SetStreamCounter installs the function reporting connected stream clients.
func (s *Service) SetStreamCounter(fn func() int) {
	s.mu.Lock()
	s.clientFn = fn
	s.mu.Unlock()
	s.metrics.SetStreamClients(fn)
}

// Estimate evaluates flow, records it in the history and returns the full
// response. Validation errors match oxygen.ErrInvalidFlowRate.
func (s *Service) Estimate(flow float64) (types.EstimateResponse, error) {
	res, err := oxygen.Estimate(flow)
	if err != nil {
		if errors.Is(err, oxygen.ErrInvalidFlowRate) {
			s.metrics.ObserveInvalid()
		}
		return types.EstimateResponse{}, err
	}
	s.history.Put(res)
	s.metrics.ObserveEstimate(res.Device.Slug())
	return s.respond(res), nil
}

// EstimateText parses raw as a flow rate and estimates it.
func (s *Service) EstimateText(raw string) (types.EstimateResponse, error) {
	flow, err := oxygen.ParseFlowRate(raw)
	if err != nil {
		s.metrics.ObserveInvalid()
		return types.EstimateResponse{}, err
	}
	return s.Estimate(flow)
}

// Describe builds the response for res without recording it.
func (s *Service) Describe(res oxygen.Result) types.EstimateResponse {
	return s.respond(res)
}

func (s *Service) respond(res oxygen.Result) types.EstimateResponse {
	return types.NewEstimateResponse(res, clinical.Hints(res), s.advisor.Evaluate(res))
}

// Reference returns the reference table over the configured flows.
func (s *Service) Reference() ([]oxygen.ReferenceRow, error) {
	s.mu.RLock()
	flows := s.referenceFlows
	s.mu.RUnlock()
	return oxygen.ReferenceTable(flows)
}

// History returns the live history entries, newest first.
func (s *Service) History() types.HistoryResponse {
	entries := s.history.List()
	out := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.HistoryEntry{
			ID:         e.ID,
			FlowRate:   e.Result.FlowRate,
			O2Pct:      e.Result.Percentage,
			Device:     e.Result.Label(),
			RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	return types.HistoryResponse{
		Entries:     out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Health returns the payload for GET /api/v1/health.
func (s *Service) Health() types.HealthResponse {
	s.mu.RLock()
	fn := s.clientFn
	s.mu.RUnlock()

	resp := types.HealthResponse{
		Status:       "ok",
		UptimeSec:    math.Round(time.Since(s.started).Seconds()),
		HistoryCount: len(s.history.List()),
	}
	if fn != nil {
		resp.StreamCount = fn()
	}
	return resp
}
