package remote

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.Code, e.Body)
}

// IsPermanent reports whether a failed remote write should be dropped
// from the queue instead of retried. Rejections (4xx) will not succeed
// on replay, with two exceptions the backend uses for backpressure.
// Everything else — transport errors, 5xx — is transient.
func IsPermanent(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Code >= 400 && se.Code < 500
}
