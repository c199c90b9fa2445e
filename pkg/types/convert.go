package types

import (
	"math"

	"github.com/o2calc/o2calc/pkg/oxygen"
)

// NewEstimateResponse builds the wire form of res. Nil hints or advisories
// are encoded as empty lists.
func NewEstimateResponse(res oxygen.Result, hints []Hint, advisories []Advisory) EstimateResponse {
	if hints == nil {
		hints = []Hint{}
	}
	if advisories == nil {
		advisories = []Advisory{}
	}
	return EstimateResponse{
		FlowRate:    res.FlowRate,
		O2Pct:       res.Percentage,
		Device:      res.Label(),
		DeviceShort: res.Device.Short(),
		DeviceSlug:  res.Device.Slug(),
		Hints:       hints,
		Advisories:  advisories,
	}
}

// NewReferenceRows converts estimator rows into wire rows using the short
// device label.
func NewReferenceRows(rows []oxygen.ReferenceRow) []ReferenceRow {
	out := make([]ReferenceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReferenceRow{
			FlowRate: r.FlowRate,
			O2Pct:    r.Percentage,
			Device:   r.Device.Short(),
		})
	}
	return out
}

// NewDeviceBands converts the estimator's bands, in evaluation order.
func NewDeviceBands(bands []oxygen.Band) []DeviceBand {
	out := make([]DeviceBand, 0, len(bands))
	for _, b := range bands {
		band := DeviceBand{
			Device:  b.Device.String(),
			Slug:    b.Device.Slug(),
			MinFlow: b.Min,
		}
		if !math.IsInf(b.Max, 1) {
			max := b.Max
			band.MaxFlow = &max
		}
		out = append(out, band)
	}
	return out
}
