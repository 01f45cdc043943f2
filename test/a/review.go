// Package a happily stolen from Working Effectively with Unit Tests.
package a

import (
	"context"

	"github.com/gaqzi/employee-reviews/internal/employees"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

type BuilderReview struct {
	r reviewing.Row
}

// Review prepares a review that is valid and not yet saved, but allows for customization.
func Review() BuilderReview {
	r := BuilderReview{}

	return r.IsValid().IsNotSaved()
}

// Row returns the prepared review as it would be stored.
func (b BuilderReview) Row() reviewing.Row {
	return b.r
}

// Build returns the prepared reviewing.Review.
// The employee check is answered by a directory only knowing the prepared employee.
func (b BuilderReview) Build() *reviewing.Review {
	r, err := reviewing.NewReview(
		context.Background(),
		employees.NewMemoryDirectory(b.r.EmployeeID),
		b.r.Year,
		b.r.Summary,
		b.r.EmployeeID,
	)
	if err != nil {
		panic("failed to build review: " + err.Error())
	}
	r.ID = b.r.ID

	return r
}

// IsInvalid prepares a review that will fail validation.
func (b BuilderReview) IsInvalid() BuilderReview {
	b.r.Year = 1999
	b.r.Summary = ""

	return b
}

// IsValid prepares a review that will pass validation.
func (b BuilderReview) IsValid() BuilderReview {
	b.r.Year = 2022
	b.r.Summary = "Great year, shipped the payroll rewrite"
	b.r.EmployeeID = 1

	return b
}

// IsSaved prepares a review that has previously been saved.
func (b BuilderReview) IsSaved() BuilderReview {
	b.r.ID = 1

	return b
}

// IsNotSaved prepares a review that has not been saved.
func (b BuilderReview) IsNotSaved() BuilderReview {
	b.r.ID = 0

	return b
}

// WithID prepares the review with the passed in id.
func (b BuilderReview) WithID(id int64) BuilderReview {
	b.r.ID = id

	return b
}

func (b BuilderReview) WithYear(year int) BuilderReview {
	b.r.Year = year

	return b
}

func (b BuilderReview) WithSummary(summary string) BuilderReview {
	b.r.Summary = summary

	return b
}

func (b BuilderReview) WithEmployeeID(id int64) BuilderReview {
	b.r.EmployeeID = id

	return b
}

// Modify allows you to specify a custom override while preparing.
// Note: consider naming your pattern and adding it to the builder.
func (b BuilderReview) Modify(mods ...func(r *reviewing.Row)) BuilderReview {
	for _, mod := range mods {
		mod(&b.r)
	}

	return b
}
