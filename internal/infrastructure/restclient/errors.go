package restclient

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when the credential exchange produced no token.
var ErrNoToken = errors.New("no access token available")

// TransportError is a network-level failure that persisted through every
// retry attempt.
type TransportError struct {
	Vendor   string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed after %d attempts: %v", e.Vendor, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-200 HTTP response.
type StatusError struct {
	Vendor     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d: %s", e.Vendor, e.StatusCode, e.Body)
}

// VendorError is a 200 response whose embedded status says the call failed.
// It is never retried.
type VendorError struct {
	Vendor string
	Code   string
	Msg    string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s: vendor error code=%s msg=%s", e.Vendor, e.Code, e.Msg)
}

// IsTransport reports whether err is a retried-out transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
