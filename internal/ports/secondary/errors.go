package secondary

import (
	"errors"
	"fmt"
)

// ErrUnreachable wraps transport failures and timeouts against a remote
// system of record. A timed-out write has an unknown outcome; callers
// queue it for reconciliation rather than assume failure or success.
var ErrUnreachable = errors.New("adapter unreachable")

// ErrNotFound indicates the target record does not exist remotely.
var ErrNotFound = errors.New("record not found")

// RejectionError is a remote validation failure. It is surfaced
// verbatim and never retried.
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("remote rejected request (status %d): %s", e.Status, e.Message)
}

// IsRejection reports whether err is a remote validation failure.
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}
