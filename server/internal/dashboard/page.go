package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
	"github.com/o2calc/o2calc/server/internal/config"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(
	template.New("index.html").Funcs(template.FuncMap{
		"pct":      func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
		"lpm":      func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		"num":      func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"gaugeURL": gaugeURL,
		"deref":    func(v *float64) float64 { return *v },
	}).ParseFS(templateFS, "templates/index.html"),
)

// PageConfig is the static part of the page. It changes only on config reload.
type PageConfig struct {
	Title       string
	Subtitle    string
	DefaultFlow float64
	SliderStep  float64
	InputStep   float64
	MinFlow     float64
	MaxFlow     float64
}

// FromUI builds a PageConfig from the ui section of the server config.
func FromUI(ui config.UIConfig) PageConfig {
	return PageConfig{
		Title:       ui.Title,
		Subtitle:    ui.Subtitle,
		DefaultFlow: ui.DefaultFlow,
		SliderStep:  ui.SliderStep,
		InputStep:   ui.InputStep,
		MinFlow:     oxygen.MinFlowRate,
		MaxFlow:     oxygen.MaxFlowRate,
	}
}

// View is the per-request part of the page.
type View struct {
	// FlowRate is the flow the result panel shows.
	FlowRate float64
	// Error is the input error banner; empty when the input was valid.
	Error string
	// Estimate is the result for FlowRate.
	Estimate types.EstimateResponse
	// Reference is the reference table.
	Reference []types.ReferenceRow
	// Devices is the quick-reference list of device bands.
	Devices []types.DeviceBand
}

type pageData struct {
	Config PageConfig
	View
}

// Render writes the full dashboard page for cfg and v to w.
func Render(w io.Writer, cfg PageConfig, v View) error {
	if err := pageTmpl.Execute(w, pageData{Config: cfg, View: v}); err != nil {
		return fmt.Errorf("dashboard: render: %w", err)
	}
	return nil
}

func gaugeURL(flow float64) string {
	q := url.Values{}
	q.Set("flow", strconv.FormatFloat(flow, 'f', -1, 64))
	return "/gauge.svg?" + q.Encode()
}
