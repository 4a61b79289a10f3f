package bonds

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a reconciliation run is requested while
// another is still executing. Runs are guarded rather than queued.
var ErrSyncInProgress = errors.New("reconciliation already in progress")

// NotFoundError reports a bond, category, or company reference that does not
// exist, or exists but is inactive where an active record is required.
type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Ref)
}

// ValidationError reports caller-supplied input that violates a precondition.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// UpstreamError reports a failed or unusable response from an external
// dependency (bond feed, company directory). It never reflects corruption of
// previously-committed store state.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream reports whether err is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
