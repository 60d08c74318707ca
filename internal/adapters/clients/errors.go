// Package clients fetches pages from upstream sites over HTTP.
package clients

import "errors"

var (
	// ErrCircuitOpen means the breaker refused the call without trying it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	ErrBodyTooLarge = errors.New("response body too large")
)
