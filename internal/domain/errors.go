package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrAuth indicates bad credentials, an expired session or a failed
	// sign-in/sign-out round trip
	ErrAuth = errors.New("authentication failed")

	// ErrProvider indicates the auth provider could not be queried
	ErrProvider = errors.New("auth provider is unreachable")

	// ErrNotFound indicates the requested item has no row in the data store
	ErrNotFound = errors.New("item not found")

	// ErrStore indicates the data store is unreachable or answered with garbage
	ErrStore = errors.New("data store request failed")

	// ErrValidation indicates the data store rejected the submitted fields
	ErrValidation = errors.New("item rejected by data store")
)
