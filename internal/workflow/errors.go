package workflow

import "errors"

// Every failure the approval core can produce is one of these four kinds.
// Services wrap them with context via fmt.Errorf("...: %w", Err...); handlers
// map them to HTTP status codes with errors.Is.
var (
	// ErrPermissionDenied means a role/status predicate failed. The operation
	// aborted with no state change.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidationFailed means the submitted document or item data is
	// missing or invalid.
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateNumber means a concurrent numbering race hit the unique
	// constraint. The create operation can be retried.
	ErrDuplicateNumber = errors.New("duplicate document number")

	// ErrNotFound means the referenced document or lookup record is absent.
	ErrNotFound = errors.New("not found")
)
