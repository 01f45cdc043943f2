// Package employees answers whether an employee exists, which is all the
// review records need to know about them.
package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sqlx/sqlx"
)

type Employee struct {
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	JobTitle     string        `db:"job_title"`
	DepartmentID sql.NullInt64 `db:"department_id"`
}

// SQLDirectory looks employees up in the employees table.
type SQLDirectory struct {
	db *sqlx.DB
}

func NewSQLDirectory(db *sqlx.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

func (d *SQLDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := d.db.QueryRowxContext(ctx, d.db.Rebind(`SELECT id FROM employees WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up employee %d: %w", id, err)
	}

	return true, nil
}

// Add inserts an employee and returns it with the assigned ID.
func (d *SQLDirectory) Add(ctx context.Context, e Employee) (Employee, error) {
	err := d.db.QueryRowxContext(
		ctx,
		d.db.Rebind(`INSERT INTO employees (name, job_title, department_id) VALUES (?, ?, ?) RETURNING id`),
		e.Name, e.JobTitle, e.DepartmentID,
	).Scan(&e.ID)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to add employee: %w", err)
	}

	return e, nil
}

func (d *SQLDirectory) All(ctx context.Context) ([]Employee, error) {
	var ret []Employee
	if err := d.db.SelectContext(ctx, &ret, `SELECT id, name, job_title, department_id FROM employees ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return ret, nil
}

// Remove deletes the employee. Reviews pointing at it are left alone.
func (d *SQLDirectory) Remove(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, d.db.Rebind(`DELETE FROM employees WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to remove employee %d: %w", id, err)
	}

	return nil
}

// MemoryDirectory is a set of known employee ids, used where there's no database.
type MemoryDirectory struct {
	ids map[int64]struct{}
}

func NewMemoryDirectory(ids ...int64) *MemoryDirectory {
	d := &MemoryDirectory{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		d.ids[id] = struct{}{}
	}

	return d
}

func (d *MemoryDirectory) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := d.ids[id]
	return ok, nil
}

func (d *MemoryDirectory) Add(id int64) {
	d.ids[id] = struct{}{}
}

func (d *MemoryDirectory) Remove(id int64) {
	delete(d.ids, id)
}
