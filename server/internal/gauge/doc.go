// Package gauge renders the oxygen percentage as a horizontal gauge: a grey
// 0–100% track, a blue bar filled to the estimate, labelled reference ticks
// and the value printed at the end of the bar.
package gauge
