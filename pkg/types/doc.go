// Package types defines the wire types shared by the o2calc server and the
// o2calc command-line client. They are encoded as JSON, or as CBOR when the
// client asks for application/cbor (CBOR reuses the json tags).
package types
