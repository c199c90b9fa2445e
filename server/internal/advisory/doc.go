// Package advisory evaluates user-configured rules against each estimate.
//
// A rule condition is a three-token expression "field op value":
//
//	flow_rate > 6
//	o2_pct >= 60
//	device == high_flow
//
// Numeric fields accept > >= < <= ==; device accepts == and != against a
// device slug (room_air, nasal_cannula, simple_mask, non_rebreather,
// high_flow). Conditions are parsed once, when rules are installed.
package advisory
