package dashboard

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
	"github.com/o2calc/o2calc/server/internal/api"
)

// Handler serves the dashboard page at "/".
type Handler struct {
	svc *api.Service
	cfg atomic.Pointer[PageConfig]
}

// NewHandler creates a Handler rendering with cfg.
func NewHandler(svc *api.Service, cfg PageConfig) *Handler {
	h := &Handler{svc: svc}
	h.SetConfig(cfg)
	return h
}

// SetConfig replaces the page configuration for subsequent requests.
func (h *Handler) SetConfig(cfg PageConfig) {
	h.cfg.Store(&cfg)
}

// Config returns the current page configuration.
func (h *Handler) Config() PageConfig {
	return *h.cfg.Load()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := h.Config()
	view := h.view(cfg, r.URL.Query().Get("flow"))

	var buf bytes.Buffer
	if err := Render(&buf, cfg, view); err != nil {
		slog.Error("dashboard: render failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// view evaluates raw, falling back to room air when it is invalid. An
// explicit valid flow is recorded in the history; the default is not.
func (h *Handler) view(cfg PageConfig, raw string) View {
	v := View{Devices: types.NewDeviceBands(oxygen.Bands())}

	rows, err := h.svc.Reference()
	if err != nil {
		slog.Warn("dashboard: reference table incomplete", "err", err)
	}
	v.Reference = types.NewReferenceRows(rows)

	if strings.TrimSpace(raw) == "" {
		v.FlowRate = cfg.DefaultFlow
		v.Estimate = h.describe(cfg.DefaultFlow)
		return v
	}

	resp, err := h.svc.EstimateText(raw)
	if err != nil {
		v.Error = err.Error()
		v.FlowRate = oxygen.MinFlowRate
		v.Estimate = h.describe(oxygen.MinFlowRate)
		return v
	}
	v.FlowRate = resp.FlowRate
	v.Estimate = resp
	return v
}

func (h *Handler) describe(flow float64) types.EstimateResponse {
	res, err := oxygen.Estimate(flow)
	if err != nil {
		// DefaultFlow is validated at config load.
		res, _ = oxygen.Estimate(oxygen.MinFlowRate)
	}
	return h.svc.Describe(res)
}
