package oxygen

import (
	"math"
	"strings"
)

// Device is a recommended oxygen delivery device.
type Device int

const (
	RoomAir Device = iota
	NasalCannula
	SimpleMask
	NonRebreather
	HighFlow
)

var deviceLabels = [...]string{
	RoomAir:       "no supplemental oxygen (room air)",
	NasalCannula:  "Nasal Cannula",
	SimpleMask:    "Simple Mask",
	NonRebreather: "Non-rebreather/Partial Rebreather Mask",
	HighFlow:      "High Flow System",
}

var deviceSlugs = [...]string{
	RoomAir:       "room_air",
	NasalCannula:  "nasal_cannula",
	SimpleMask:    "simple_mask",
	NonRebreather: "non_rebreather",
	HighFlow:      "high_flow",
}

// String returns the device label shown to users.
func (d Device) String() string {
	if d < RoomAir || d > HighFlow {
		return "unknown"
	}
	return deviceLabels[d]
}

// Short returns the label without its parenthesised suffix, as used in the
// reference table.
func (d Device) Short() string {
	label := d.String()
	if i := strings.Index(label, " ("); i >= 0 {
		return label[:i]
	}
	return label
}

// Slug returns a stable machine-readable identifier for d.
func (d Device) Slug() string {
	if d < RoomAir || d > HighFlow {
		return "unknown"
	}
	return deviceSlugs[d]
}

// DeviceFromSlug is the inverse of Device.Slug.
func DeviceFromSlug(slug string) (Device, bool) {
	for d, s := range deviceSlugs {
		if s == slug {
			return Device(d), true
		}
	}
	return RoomAir, false
}

// Band is a flow-rate range served by one device. Min is exclusive, Max is
// inclusive.
type Band struct {
	Device Device
	Min    float64
	Max    float64
}

// Contains reports whether flow falls inside the band.
func (b Band) Contains(flow float64) bool {
	return flow > b.Min && flow <= b.Max
}

var bands = []Band{
	{Device: NasalCannula, Min: 0, Max: 6},
	{Device: SimpleMask, Min: 6, Max: 10},
	{Device: NonRebreather, Min: 10, Max: 15},
	{Device: HighFlow, Min: 15, Max: math.Inf(1)},
}

// Bands returns the device bands in evaluation order. The returned slice is a
// copy.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
