package reviewing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is what storage implementations wrap when a row doesn't exist.
	ErrNotFound = errors.New("review not found")

	// ErrNotPersisted is returned when updating or deleting a review that was never saved.
	ErrNotPersisted = errors.New("review has not been saved")
)

// InvalidArgumentError means a review was given a value it can't hold.
type InvalidArgumentError struct {
	Field  string
	Reason string

	// Err is the underlying validation failure, when there is one.
	Err error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// ReferenceNotFoundError means the referenced employee doesn't exist.
type ReferenceNotFoundError struct {
	EmployeeID int64
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("employee with id %d does not exist", e.EmployeeID)
}
