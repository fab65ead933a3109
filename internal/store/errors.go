// Package store persists chat sessions as a single obfuscated blob in a
// key-addressed backend.
package store

import "errors"

// Sentinel errors for session operations. Check with errors.Is().
var (
	// ErrSessionNotFound indicates the requested session id is absent from
	// the collection.
	ErrSessionNotFound = errors.New("session not found")
)
