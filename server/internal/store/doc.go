// Package store keeps recent estimates in memory. Entries are keyed by a
// random UUID, expire after a TTL, and the oldest are dropped once the store
// reaches its maximum size. Nothing is persisted.
package store
