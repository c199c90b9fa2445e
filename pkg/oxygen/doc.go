// Package oxygen estimates the delivered oxygen percentage (FiO2) for a
// supplemental-oxygen flow rate and recommends a delivery device.
//
// estimate.go provides the pure Estimate(flow) function. Flow rates are in
// liters per minute (LPM) and must lie in [0, 50]; anything else fails with
// an error matching ErrInvalidFlowRate.
//
// Device bands (lower bound exclusive, upper bound inclusive):
//
//	Nasal Cannula                           (0, 6]    21 + 4·flow
//	Simple Mask                             (6, 10]   40 + 4·(flow − 5)
//	Non-rebreather/Partial Rebreather Mask  (10, 15]  60 + 3·(flow − 10)
//	High Flow System                        (15, ∞)   90
//
// A flow of 0 is room air (21%). Results are capped at 100% and rounded to one
// decimal place, half-up.
//
// reference.go builds the reference table shown next to the gauge.
package oxygen
