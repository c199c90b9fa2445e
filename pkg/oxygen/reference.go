package oxygen

import (
	"errors"
	"fmt"
)

// DefaultReferenceFlows are the flow rates listed in the reference table.
var DefaultReferenceFlows = []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 12, 15}

// DefaultGaugeTicks are the percentages marked on the gauge.
var DefaultGaugeTicks = []float64{0, 21, 40, 60, 80, 100}

// ReferenceRow is one line of the reference table.
type ReferenceRow struct {
	FlowRate   float64
	Percentage float64
	Device     Device
}

// ReferenceTable estimates every flow in flows. Flows that fail validation are
// left out of the table and reported together in the returned error; the rows
// for the remaining flows are still returned.
func ReferenceTable(flows []float64) ([]ReferenceRow, error) {
	rows := make([]ReferenceRow, 0, len(flows))
	var errs []error
	for _, f := range flows {
		res, err := Estimate(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("reference flow %g: %w", f, err))
			continue
		}
		rows = append(rows, ReferenceRow{
			FlowRate:   res.FlowRate,
			Percentage: res.Percentage,
			Device:     res.Device,
		})
	}
	return rows, errors.Join(errs...)
}
