package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrUnsupportedDriver is returned by Open for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)
