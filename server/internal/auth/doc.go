// Package auth provides API-key authentication middleware for the o2calc
// REST API.
//
// APIKey(mode, header, key) wraps an http.Handler. When mode != "apikey" or
// key == "", all requests pass through (local use with auth disabled).
// Otherwise the named request header must carry key; a missing or wrong key
// gets 401 with a JSON error body.
package auth
