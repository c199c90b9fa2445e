// Package metrics exposes o2calc usage counters in the Prometheus text
// exposition format at /metrics.
//
//	o2calc_estimates_total{device="..."}   counter
//	o2calc_invalid_flow_rate_total         counter
//	o2calc_http_requests_total{route="..."} counter
//	o2calc_stream_clients                  gauge (sampled on scrape)
package metrics
