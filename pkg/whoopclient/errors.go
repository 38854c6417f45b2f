// whoopclient/errors.go
package whoopclient

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates no credential set is available yet; the user must
// initiate the authorization flow before resource calls can be made.
var ErrNotConnected = errors.New("not connected to WHOOP: authorize first")

// UpstreamError represents a non-2xx response from the WHOOP API after the
// retry budget has been exhausted.
type UpstreamError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("whoop api returned status %d: %s", e.Status, e.Body)
}

// InvalidDateError indicates a date input that could not be normalized.
type InvalidDateError struct {
	Input string
}

// Error implements the error interface.
func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY, YYYY-MM, YYYY-MM-DD or an RFC 3339 timestamp", e.Input)
}
