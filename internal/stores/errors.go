package stores

import "errors"

var (
	// ErrNotFound is returned by Get when no record exists under the key.
	ErrNotFound = errors.New("credential record not found")
	// ErrUnavailable wraps every transport or backend fault.
	ErrUnavailable = errors.New("credential store unavailable")
	// ErrConflict is returned by CompareAndSwap when the stored value does
	// not match the expected one.
	ErrConflict = errors.New("credential record changed concurrently")
)
