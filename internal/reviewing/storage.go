package reviewing

import "context"

// Row is a review the way it's stored.
type Row struct {
	ID         int64  `db:"id"`
	Year       int    `db:"year"`
	Summary    string `db:"summary"`
	EmployeeID int64  `db:"employee_id"`
}

type Storage interface {
	// CreateTable creates the reviews table unless it already exists.
	CreateTable(ctx context.Context) error

	// DropTable removes the reviews table if it exists.
	DropTable(ctx context.Context) error

	// Insert always adds a new row and returns the assigned ID, row.ID is ignored.
	Insert(ctx context.Context, row Row) (int64, error)

	// Update overwrites the row with row.ID. When there's no such row nothing happens.
	Update(ctx context.Context, row Row) error

	// Delete removes the row with id. When there's no such row nothing happens.
	Delete(ctx context.Context, id int64) error

	// Get finds the row or returns an error wrapping ErrNotFound.
	Get(ctx context.Context, id int64) (Row, error)

	// All returns every row ordered by ID.
	All(ctx context.Context) ([]Row, error)
}

type EmployeeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
