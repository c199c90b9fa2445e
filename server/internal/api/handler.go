package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
	"github.com/o2calc/o2calc/server/internal/export"
	"github.com/o2calc/o2calc/server/internal/gauge"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	svc *Service
	mux *http.ServeMux
}

// New creates a Handler wired to svc and registers all routes.
func New(svc *Service) http.Handler {
	h := &Handler{svc: svc, mux: http.NewServeMux()}

	h.route("/api/v1/health", h.health)
	h.route("/api/v1/estimate", h.estimate)
	h.route("/api/v1/reference", h.reference)
	h.route("/api/v1/reference.xlsx", h.referenceXLSX)
	h.route("/api/v1/devices", h.devices)
	h.route("/api/v1/history", h.history)
	h.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, http.StatusNotFound, "not found")
	})

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// route registers a GET-only handler and counts its requests.
func (h *Handler) route(path string, fn http.HandlerFunc) {
	h.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		h.svc.metrics.ObserveRequest(path)
		if r.Method != http.MethodGet {
			writeErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	})
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeResp(w, r, http.StatusOK, h.svc.Health())
}

// estimate returns GET /api/v1/estimate?flow=F.
func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("flow")
	resp, err := h.svc.EstimateText(raw)
	if err != nil {
		if errors.Is(err, oxygen.ErrInvalidFlowRate) {
			writeErr(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("api: estimate failed", "flow", raw, "err", err)
		writeErr(w, r, http.StatusInternalServerError, "estimate failed")
		return
	}
	writeResp(w, r, http.StatusOK, resp)
}

// reference returns GET /api/v1/reference.
func (h *Handler) reference(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Reference()
	if err != nil {
		// Config validation keeps reference flows in range; log and serve
		// the rows that did evaluate.
		slog.Warn("api: reference table incomplete", "err", err)
	}
	writeResp(w, r, http.StatusOK, types.NewReferenceRows(rows))
}

// referenceXLSX returns GET /api/v1/reference.xlsx.
func (h *Handler) referenceXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Reference()
	if err != nil {
		slog.Warn("api: reference table incomplete", "err", err)
	}
	data, err := export.ReferenceWorkbook(rows)
	if err != nil {
		slog.Error("api: reference export failed", "err", err)
		writeErr(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=o2-reference.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// devices returns GET /api/v1/devices.
func (h *Handler) devices(w http.ResponseWriter, r *http.Request) {
	writeResp(w, r, http.StatusOK, types.NewDeviceBands(oxygen.Bands()))
}

// history returns GET /api/v1/history.
func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	writeResp(w, r, http.StatusOK, h.svc.History())
}

// GaugeHandler serves the gauge image for ?flow=F in the given format.
// The estimate is not recorded in the history.
func GaugeHandler(svc *Service, format gauge.Format) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErr(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		flow, err := oxygen.ParseFlowRate(r.URL.Query().Get("flow"))
		if err != nil {
			writeErr(w, r, http.StatusBadRequest, err.Error())
			return
		}
		res, err := oxygen.Estimate(flow)
		if err != nil {
			writeErr(w, r, http.StatusBadRequest, err.Error())
			return
		}

		var buf bytes.Buffer
		if err := gauge.Render(&buf, res.Percentage, gauge.Options{Ticks: svc.GaugeTicks(), Format: format}); err != nil {
			slog.Error("api: gauge render failed", "flow", flow, "err", err)
			writeErr(w, r, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes()) //nolint:errcheck
	})
}
