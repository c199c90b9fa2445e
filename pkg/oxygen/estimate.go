package oxygen

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Physiological constants and the accepted flow range.
const (
	RoomAirPercentage = 21.0
	MaxPercentage     = 100.0
	MinFlowRate       = 0.0
	MaxFlowRate       = 50.0
)

// Formula coefficients per band.
const (
	cannulaPerLPM = 4.0

	maskBase     = 40.0
	maskBaseline = 5.0 // not the band's lower bound (6); see DESIGN.md
	maskPerLPM   = 4.0

	nrbBase     = 60.0
	nrbBaseline = 10.0
	nrbPerLPM   = 3.0

	highFlowPercentage = 90.0
)

// Result is one estimation outcome.
type Result struct {
	// FlowRate is the validated input in LPM.
	FlowRate float64
	// Percentage is the estimated FiO2 in [21, 100], one decimal place.
	Percentage float64
	// Device is the recommended delivery device, RoomAir for a zero flow.
	Device Device
}

// Label returns the device label for the result.
func (r Result) Label() string { return r.Device.String() }

// Validate checks that flow is a number inside [MinFlowRate, MaxFlowRate].
func Validate(flow float64) (float64, error) {
	input := strconv.FormatFloat(flow, 'g', -1, 64)
	switch {
	case math.IsNaN(flow):
		return 0, invalid(input, "must be a numeric value")
	case flow < MinFlowRate:
		return 0, invalid(input, "cannot be negative, minimum value is %g", MinFlowRate)
	case flow > MaxFlowRate:
		return 0, invalid(input, "cannot exceed %g LPM", MaxFlowRate)
	}
	return flow, nil
}

// ParseFlowRate parses a textual flow rate and validates it.
func ParseFlowRate(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, invalid(s, "must be a valid number")
	}
	flow, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, invalid(s, "must be a valid number")
	}
	return Validate(flow)
}

// Estimate maps a flow rate to an estimated oxygen percentage and a
// recommended device. It is a pure function.
func Estimate(flow float64) (Result, error) {
	flow, err := Validate(flow)
	if err != nil {
		return Result{}, err
	}

	if flow <= 0 {
		return Result{FlowRate: flow, Percentage: RoomAirPercentage, Device: RoomAir}, nil
	}

	var (
		pct    float64
		device Device
	)
	for _, b := range bands {
		if !b.Contains(flow) {
			continue
		}
		device = b.Device
		switch b.Device {
		case NasalCannula:
			pct = RoomAirPercentage + flow*cannulaPerLPM
		case SimpleMask:
			pct = maskBase + (flow-maskBaseline)*maskPerLPM
		case NonRebreather:
			pct = nrbBase + (flow-nrbBaseline)*nrbPerLPM
		default:
			pct = highFlowPercentage
		}
		break
	}

	return Result{
		FlowRate:   flow,
		Percentage: RoundHalfUp(math.Min(pct, MaxPercentage)),
		Device:     device,
	}, nil
}

// RoundHalfUp rounds v to one decimal place, with ties rounded away from zero
// (0.25 → 0.3, not the banker's 0.2).
func RoundHalfUp(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
