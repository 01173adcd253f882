package tracker

import (
	"errors"
	"fmt"

	"github.com/kandev/archiver/internal/common/stringutil"
)

// maxErrorMessageBody caps how much of a response body Error includes.
// The full captured body stays in TransportError.Body.
const maxErrorMessageBody = 512

// TransportError is returned for any failed tracker call: a network failure,
// a non-2xx response, or a response body that cannot be decoded.
type TransportError struct {
	Op         string
	Endpoint   string
	StatusCode int // zero when no response was received
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("%s: tracker API %s returned %d: %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: tracker API %s returned %d: %s", e.Op, e.Endpoint, e.StatusCode, stringutil.TruncateStringWithEllipsis(e.Body, maxErrorMessageBody))
	default:
		return fmt.Sprintf("%s: request %s: %v", e.Op, e.Endpoint, e.Err)
	}
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
