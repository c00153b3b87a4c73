package progress

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned before any aggregation work begins,
// when the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ValidationError marks missing or malformed summary request parameters.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataAccessError wraps a failure reading workout or nutrition rows.
// The underlying store error is preserved for logging and diagnosis.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access, %s: %s", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed summary upsert. Distinct from
// DataAccessError as it happens after a successful computation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist summary: %s", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
