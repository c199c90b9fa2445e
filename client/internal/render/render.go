// Package render formats o2calc results for a terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/o2calc/o2calc/client/internal/fetch"
	"github.com/o2calc/o2calc/pkg/types"
)

// Estimate writes resp followed by its hints and advisories.
func Estimate(w io.Writer, resp types.EstimateResponse) {
	fmt.Fprintf(w, "Flow rate:   %.1f LPM\n", resp.FlowRate)
	fmt.Fprintf(w, "Approx. O₂:  %.1f%%\n", resp.O2Pct)
	fmt.Fprintf(w, "Device:      %s\n", resp.Device)
	for _, a := range resp.Advisories {
		fmt.Fprintf(w, "  [%s] %s: %s\n", a.Severity, a.Rule, a.Message)
	}
	for _, h := range resp.Hints {
		fmt.Fprintf(w, "  [%s] %s\n", h.Level, h.Title)
	}
}

// Reference writes the reference table.
func Reference(w io.Writer, rows []types.ReferenceRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Flow Rate (LPM)\tO₂ %\tDevice")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.1f%%\t%s\n", num(r.FlowRate), r.O2Pct, r.Device)
	}
	return tw.Flush()
}

// Devices writes the device bands.
func Devices(w io.Writer, bands []types.DeviceBand) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Device\tSlug\tFlow (LPM)")
	for _, b := range bands {
		rng := "> " + num(b.MinFlow)
		if b.MaxFlow != nil {
			rng = fmt.Sprintf("> %s and ≤ %s", num(b.MinFlow), num(*b.MaxFlow))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Device, b.Slug, rng)
	}
	return tw.Flush()
}

// History writes recent estimates, newest first.
func History(w io.Writer, hist types.HistoryResponse) error {
	if len(hist.Entries) == 0 {
		_, err := fmt.Fprintln(w, "no recent estimates")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Recorded\tFlow (LPM)\tO₂ %\tDevice")
	for _, e := range hist.Entries {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f%%\t%s\n", e.RecordedAt, e.FlowRate, e.O2Pct, e.Device)
	}
	return tw.Flush()
}

// Stats writes the server usage summary.
func Stats(w io.Writer, st fetch.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Estimates\t%s\n", num(st.TotalEstimates()))
	for _, k := range sortedKeys(st.Estimates) {
		fmt.Fprintf(tw, "  %s\t%s\n", k, num(st.Estimates[k]))
	}
	fmt.Fprintf(tw, "Invalid flow rates\t%s\n", num(st.Invalid))
	fmt.Fprintf(tw, "Stream clients\t%s\n", num(st.StreamClients))
	if len(st.Requests) > 0 {
		fmt.Fprintln(tw, "Requests\t")
		for _, k := range sortedKeys(st.Requests) {
			fmt.Fprintf(tw, "  %s\t%s\n", k, num(st.Requests[k]))
		}
	}
	return tw.Flush()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
