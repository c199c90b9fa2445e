// Package fetch is the HTTP client for a running o2calc server.
//
// Client wraps a resty client configured with the server base URL, a request
// timeout, retries on transport errors and the optional API-key header. Each
// method maps to one REST endpoint and decodes into pkg/types.
//
// Stats scrapes /metrics and sums the Prometheus text exposition into a
// Stats value, the same way a Prometheus scraper would read it.
package fetch
