package oxygen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_KnownPoints(t *testing.T) {
	tests := []struct {
		name   string
		flow   float64
		pct    float64
		device Device
	}{
		{"room air", 0, 21.0, RoomAir},
		{"cannula low", 1, 25.0, NasalCannula},
		{"cannula half step", 2.5, 31.0, NasalCannula},
		{"cannula upper bound", 6, 45.0, NasalCannula},
		{"mask just above cannula", 6.5, 46.0, SimpleMask},
		{"mask upper bound", 10, 60.0, SimpleMask},
		{"non-rebreather", 12, 66.0, NonRebreather},
		{"non-rebreather upper bound", 15, 75.0, NonRebreather},
		{"high flow", 16, 90.0, HighFlow},
		{"high flow max", 50, 90.0, HighFlow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Estimate(tt.flow)
			require.NoError(t, err)
			assert.Equal(t, tt.pct, res.Percentage)
			assert.Equal(t, tt.device, res.Device)
			assert.Equal(t, tt.flow, res.FlowRate)
		})
	}
}

func TestEstimate_RoomAirLabel(t *testing.T) {
	res, err := Estimate(0)
	require.NoError(t, err)
	assert.Equal(t, "no supplemental oxygen (room air)", res.Label())
	assert.Equal(t, "no supplemental oxygen", res.Device.Short())
}

func TestEstimate_MaskStepAtSixLPM(t *testing.T) {
	// The simple-mask formula starts from 5 LPM while the band starts above 6,
	// so the estimate drops by about one point when crossing into the band.
	atSix, err := Estimate(6)
	require.NoError(t, err)
	aboveSix, err := Estimate(6.01)
	require.NoError(t, err)

	assert.Equal(t, 45.0, atSix.Percentage)
	assert.Equal(t, 44.0, aboveSix.Percentage)
	assert.Equal(t, SimpleMask, aboveSix.Device)
}

func TestEstimate_Invalid(t *testing.T) {
	for _, flow := range []float64{-0.1, -5, 50.01, 100, math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := Estimate(flow)
		require.Error(t, err, "flow %v", flow)
		assert.ErrorIs(t, err, ErrInvalidFlowRate)

		var ife *InvalidFlowRateError
		assert.ErrorAs(t, err, &ife)
	}
}

func TestEstimate_RangeInvariant(t *testing.T) {
	for flow := 0.0; flow <= MaxFlowRate; flow += 0.05 {
		res, err := Estimate(flow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Percentage, RoomAirPercentage, "flow %v", flow)
		assert.LessOrEqual(t, res.Percentage, MaxPercentage, "flow %v", flow)
	}
}

func TestEstimate_MonotonicWithinBand(t *testing.T) {
	for _, b := range Bands() {
		hi := math.Min(b.Max, MaxFlowRate)
		prev := -1.0
		for flow := b.Min + 0.01; flow <= hi; flow += 0.01 {
			res, err := Estimate(flow)
			require.NoError(t, err)
			require.Equal(t, b.Device, res.Device, "flow %v", flow)
			assert.GreaterOrEqual(t, res.Percentage, prev, "flow %v", flow)
			prev = res.Percentage
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	for _, flow := range []float64{0, 0.3, 5.55, 6.01, 9.99, 14.2, 33} {
		a, errA := Estimate(flow)
		b, errB := Estimate(flow)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, math.Float64bits(a.Percentage), math.Float64bits(b.Percentage))
		assert.Equal(t, a, b)
	}
}

func TestParseFlowRate(t *testing.T) {
	flow, err := ParseFlowRate(" 4.5 ")
	require.NoError(t, err)
	assert.Equal(t, 4.5, flow)

	for _, in := range []string{"", "abc", "4,5", "-1", "51", "NaN"} {
		_, err := ParseFlowRate(in)
		assert.ErrorIs(t, err, ErrInvalidFlowRate, "input %q", in)
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 0.3, RoundHalfUp(0.25))
	assert.Equal(t, 2.5, RoundHalfUp(2.45))
	assert.Equal(t, 44.0, RoundHalfUp(44.04))
	assert.Equal(t, 21.0, RoundHalfUp(21))
}

func TestDeviceSlugRoundTrip(t *testing.T) {
	for d := RoomAir; d <= HighFlow; d++ {
		got, ok := DeviceFromSlug(d.Slug())
		require.True(t, ok, d.Slug())
		assert.Equal(t, d, got)
	}
	_, ok := DeviceFromSlug("venturi")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Device(42).String())
}
