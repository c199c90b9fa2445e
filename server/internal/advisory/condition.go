package advisory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/o2calc/o2calc/pkg/oxygen"
)

// Condition is a parsed rule expression.
type Condition struct {
	field     string
	op        string
	threshold float64
	device    oxygen.Device
}

// ParseCondition parses a "field op value" expression.
func ParseCondition(expr string) (Condition, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return Condition{}, fmt.Errorf("condition %q: want \"field op value\"", expr)
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "device":
		if op != "==" && op != "!=" {
			return Condition{}, fmt.Errorf("condition %q: device supports == and != only", expr)
		}
		d, ok := oxygen.DeviceFromSlug(rhs)
		if !ok {
			return Condition{}, fmt.Errorf("condition %q: unknown device %q", expr, rhs)
		}
		return Condition{field: field, op: op, device: d}, nil

	case "flow_rate", "o2_pct":
		switch op {
		case ">", ">=", "<", "<=", "==":
		default:
			return Condition{}, fmt.Errorf("condition %q: unknown operator %q", expr, op)
		}
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return Condition{}, fmt.Errorf("condition %q: threshold: %w", expr, err)
		}
		return Condition{field: field, op: op, threshold: threshold}, nil

	default:
		return Condition{}, fmt.Errorf("condition %q: unknown field %q", expr, field)
	}
}

// Eval reports whether the condition holds for res, and the value of the
// field it tested.
func (c Condition) Eval(res oxygen.Result) (bool, float64) {
	switch c.field {
	case "device":
		eq := res.Device == c.device
		if c.op == "!=" {
			return !eq, res.Percentage
		}
		return eq, res.Percentage
	case "flow_rate":
		return compareFloat(res.FlowRate, c.op, c.threshold), res.FlowRate
	case "o2_pct":
		return compareFloat(res.Percentage, c.op, c.threshold), res.Percentage
	default:
		return false, 0
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
