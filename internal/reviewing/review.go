package reviewing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gaqzi/employee-reviews/internal/platform/validate"
)

// Review is an employee's review for a year.
// ID is 0 until the review has been saved, and goes back to 0 when it's deleted.
type Review struct {
	ID      int64
	Year    int    `validate:"gte=2000,lte=2147483647"`
	Summary string `validate:"required"`

	employeeID int64
}

// NewReview prepares an unsaved review. The employee has to exist, but the
// year and summary are taken as-is since rows loaded from storage are trusted.
func NewReview(ctx context.Context, employees EmployeeChecker, year int, summary string, employeeID int64) (*Review, error) {
	r := &Review{Year: year, Summary: summary}
	if err := r.SetEmployeeID(ctx, employees, employeeID); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Review) EmployeeID() int64 {
	return r.employeeID
}

// SetEmployeeID assigns the employee after checking that it exists.
// The check only happens here, removing the employee later doesn't affect the review.
func (r *Review) SetEmployeeID(ctx context.Context, employees EmployeeChecker, id int64) error {
	exists, err := employees.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check employee %d: %w", id, err)
	}
	if !exists {
		return &ReferenceNotFoundError{EmployeeID: id}
	}

	r.employeeID = id

	return nil
}

// IsPersisted reports whether the review has a row in storage.
func (r *Review) IsPersisted() bool {
	return r.ID != 0
}

// Validate checks the year and summary rules, it doesn't look at the employee.
func (r *Review) Validate(ctx context.Context) error {
	err := validate.Struct(ctx, r)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("failed to validate review: %w", err)
	}

	fe := errs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "gte":
		reason = "must be greater than or equal to " + fe.Param()
	case "lte":
		reason = "must be less than or equal to " + fe.Param()
	case "required":
		reason = "must not be empty"
	}

	return &InvalidArgumentError{Field: strings.ToLower(fe.Field()), Reason: reason, Err: errs}
}

func (r *Review) String() string {
	return fmt.Sprintf("Review %d: %d, %s, employee %d", r.ID, r.Year, r.Summary, r.employeeID)
}

func (r *Review) row() Row {
	return Row{
		ID:         r.ID,
		Year:       r.Year,
		Summary:    r.Summary,
		EmployeeID: r.employeeID,
	}
}
