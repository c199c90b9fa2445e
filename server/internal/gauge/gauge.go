package gauge

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/o2calc/o2calc/pkg/oxygen"
)

// Format selects the output encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Options controls the rendered gauge.
type Options struct {
	Width  int
	Height int
	// Ticks are the percentages marked on the axis. Defaults to
	// oxygen.DefaultGaugeTicks.
	Ticks  []float64
	Format Format
}

var (
	colorFill  = drawing.ColorFromHex("0066cc")
	colorTrack = drawing.ColorFromHex("d3d3d3")
	colorGrid  = drawing.ColorFromHex("999999")
)

const (
	defaultWidth  = 800
	defaultHeight = 400
	barTop        = 1.0
)

// Render draws a gauge for pct (clamped to [0, 100]) and writes it to w.
func Render(w io.Writer, pct float64, opts Options) error {
	if math.IsNaN(pct) {
		return fmt.Errorf("gauge: percentage is NaN")
	}
	pct = math.Max(0, math.Min(pct, oxygen.MaxPercentage))

	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if len(opts.Ticks) == 0 {
		opts.Ticks = oxygen.DefaultGaugeTicks
	}

	ch := chart.Chart{
		Title:  "Approximate O₂ Percentage",
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 30, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: oxygen.MaxPercentage},
			Ticks:          ticks(opts.Ticks),
			GridLines:      gridLines(opts.Ticks),
			GridMajorStyle: chart.Style{StrokeColor: colorGrid, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Range: &chart.ContinuousRange{Min: 0, Max: barTop * 1.5},
		},
		Series: []chart.Series{
			bar("track", oxygen.MaxPercentage, colorTrack),
			bar("o2", pct, colorFill),
			chart.AnnotationSeries{
				Annotations: []chart.Value2{{
					XValue: pct,
					YValue: barTop / 2,
					Label:  fmt.Sprintf("%.1f%%", pct),
				}},
				Style: chart.Style{
					FillColor:   colorFill,
					FontColor:   drawing.ColorWhite,
					FontSize:    14,
					StrokeColor: colorFill,
				},
			},
		},
	}

	format := chart.PNG
	if opts.Format == SVG {
		format = chart.SVG
	}
	if err := ch.Render(format, w); err != nil {
		return fmt.Errorf("gauge: render: %w", err)
	}
	return nil
}

// bar is a filled rectangle from x=0 to x=to, height barTop.
func bar(name string, to float64, color drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{0, to},
		YValues: []float64{barTop, barTop},
		Style: chart.Style{
			StrokeColor: color,
			FillColor:   color,
			StrokeWidth: 1,
		},
	}
}

func ticks(values []float64) []chart.Tick {
	out := make([]chart.Tick, 0, len(values))
	for _, v := range values {
		label := fmt.Sprintf("%g%%", v)
		if v == oxygen.RoomAirPercentage {
			label += " (Room Air)"
		}
		out = append(out, chart.Tick{Value: v, Label: label})
	}
	return out
}

func gridLines(values []float64) []chart.GridLine {
	out := make([]chart.GridLine, 0, len(values))
	for _, v := range values {
		out = append(out, chart.GridLine{Value: v})
	}
	return out
}
