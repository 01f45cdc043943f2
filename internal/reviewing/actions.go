package reviewing

import (
	"context"

	"github.com/gaqzi/employee-reviews/internal/platform/action"
)

// repositoryActions are the checks the Repository runs before it writes.
// Both writes use the same rules so a review can't end up stored with a
// year or summary that Create would have rejected.
func repositoryActions() *action.Mapper {
	m := &action.Mapper{}

	m.Add("Save", func(ctx context.Context, r *Review) error {
		return r.Validate(ctx)
	})

	m.Add("Update", func(ctx context.Context, r *Review) error {
		return r.Validate(ctx)
	})

	return m
}
