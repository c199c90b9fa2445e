// Package clinical attaches bedside considerations to oxygen estimates.
//
// Hints are fixed guidance keyed off the estimate itself: room air, target
// saturation ranges, humidification, the simple-mask step just above 6 LPM,
// reservoir bags and the fixed high-flow value. They are not configurable;
// site-specific rules belong in the server's advisory engine.
package clinical
