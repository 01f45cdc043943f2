package storage

import (
	"errors"
	"fmt"

	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

type NoReviewError struct {
	ID int64
}

func (e *NoReviewError) Error() string {
	return fmt.Sprintf("review not found by id: %d", e.ID)
}

func (e *NoReviewError) Unwrap() error {
	return reviewing.ErrNotFound
}

// ErrNoTable is returned by the memory store after its table has been dropped.
var ErrNoTable = errors.New("reviews table does not exist")
