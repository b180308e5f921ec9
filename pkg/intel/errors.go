package intel

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the feed has no record for the
// requested id.
var ErrNotFound = errors.New("record not found in intel feed")

// UnavailableError wraps a transport failure reaching the feed. The API
// reports it as 503.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("intel feed unreachable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// UpstreamError records a non-success status from the feed. The API
// reports it as 502 with the upstream status in the detail.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("intel feed returned status %d", e.Status)
}
