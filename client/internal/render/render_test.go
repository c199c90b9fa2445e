package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o2calc/o2calc/client/internal/fetch"
	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

func TestEstimate(t *testing.T) {
	var buf bytes.Buffer
	Estimate(&buf, types.EstimateResponse{
		FlowRate: 6.5, O2Pct: 46, Device: "Simple Mask",
		Advisories: []types.Advisory{{Rule: "mask", Severity: "info", Message: "Check fit."}},
		Hints:      []types.Hint{{Level: "info", Title: "Target SpO₂ 94–98%"}},
	})
	out := buf.String()
	assert.Contains(t, out, "6.5 LPM")
	assert.Contains(t, out, "46.0%")
	assert.Contains(t, out, "Simple Mask")
	assert.Contains(t, out, "[info] mask: Check fit.")
	assert.Contains(t, out, "[info] Target SpO₂ 94–98%")
}

func TestReference(t *testing.T) {
	rows, err := oxygen.ReferenceTable(oxygen.DefaultReferenceFlows)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Reference(&buf, types.NewReferenceRows(rows)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(oxygen.DefaultReferenceFlows)+1)
	assert.Contains(t, lines[0], "Flow Rate (LPM)")
	assert.Contains(t, lines[1], "21.0%")
	assert.Contains(t, lines[1], "no supplemental oxygen")
	assert.Contains(t, lines[len(lines)-1], "75.0%")
}

func TestDevices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Devices(&buf, types.NewDeviceBands(oxygen.Bands())))
	out := buf.String()
	assert.Contains(t, out, "> 0 and ≤ 6")
	assert.Contains(t, out, "high_flow")
	assert.Contains(t, out, "> 15\n")
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(&buf, types.HistoryResponse{}))
	assert.Equal(t, "no recent estimates\n", buf.String())
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, fetch.Stats{
		Estimates: map[string]float64{"simple_mask": 2, "nasal_cannula": 3},
		Invalid:   1,
		Requests:  map[string]float64{"/api/v1/estimate": 6},
	}))
	out := buf.String()
	assert.Contains(t, out, "Estimates")
	assert.Contains(t, out, "5")
	assert.Less(t, strings.Index(out, "nasal_cannula"), strings.Index(out, "simple_mask"))
	assert.Contains(t, out, "/api/v1/estimate")
}
