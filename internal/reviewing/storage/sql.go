package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sqlx/sqlx"

	"github.com/gaqzi/employee-reviews/internal/platform/database"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

var createTable = map[database.Dialect]string{
	database.Postgres: `
CREATE TABLE IF NOT EXISTS reviews (
  id SERIAL PRIMARY KEY,
  year INT,
  summary TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)`,
	database.SQLite: `
CREATE TABLE IF NOT EXISTS reviews (
  id INTEGER PRIMARY KEY,
  year INT,
  summary TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)`,
}

// SQLStore keeps reviews in the reviews table. Every call is its own statement
// and commits on its own.
type SQLStore struct {
	db      *sqlx.DB
	dialect database.Dialect
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db.DB, dialect: db.Dialect}
}

func (s *SQLStore) CreateTable(ctx context.Context) error {
	ddl, ok := createTable[s.dialect]
	if !ok {
		return fmt.Errorf("no reviews table definition for %s", s.dialect)
	}

	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *SQLStore) DropTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS reviews`)
	return err
}

func (s *SQLStore) Insert(ctx context.Context, row reviewing.Row) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(
		ctx,
		s.db.Rebind(`INSERT INTO reviews (year, summary, employee_id) VALUES (?, ?, ?) RETURNING id`),
		row.Year, row.Summary, row.EmployeeID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *SQLStore) Update(ctx context.Context, row reviewing.Row) error {
	_, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`UPDATE reviews SET year = ?, summary = ?, employee_id = ? WHERE id = ?`),
		row.Year, row.Summary, row.EmployeeID, row.ID,
	)

	return err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM reviews WHERE id = ?`), id)

	return err
}

func (s *SQLStore) Get(ctx context.Context, id int64) (reviewing.Row, error) {
	var row reviewing.Row
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, year, summary, employee_id FROM reviews WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return reviewing.Row{}, &NoReviewError{ID: id}
	}
	if err != nil {
		return reviewing.Row{}, err
	}

	return row, nil
}

func (s *SQLStore) All(ctx context.Context) ([]reviewing.Row, error) {
	ret := []reviewing.Row{}
	if err := s.db.SelectContext(ctx, &ret, `SELECT id, year, summary, employee_id FROM reviews ORDER BY id`); err != nil {
		return nil, err
	}

	return ret, nil
}
