package storage

import (
	"context"
	"maps"
	"slices"

	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

// MemoryStore keeps rows in a map, it starts out with its table created.
type MemoryStore struct {
	data      map[int64]reviewing.Row
	currentID int64
	dropped   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[int64]reviewing.Row),
	}
}

func (s *MemoryStore) CreateTable(_ context.Context) error {
	if s.dropped {
		s.data = make(map[int64]reviewing.Row)
		s.currentID = 0
		s.dropped = false
	}

	return nil
}

func (s *MemoryStore) DropTable(_ context.Context) error {
	s.data = nil
	s.dropped = true

	return nil
}

func (s *MemoryStore) Insert(_ context.Context, row reviewing.Row) (int64, error) {
	if s.dropped {
		return 0, ErrNoTable
	}

	s.currentID++
	row.ID = s.currentID
	s.data[row.ID] = row

	return row.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, row reviewing.Row) error {
	if s.dropped {
		return ErrNoTable
	}

	if _, ok := s.data[row.ID]; ok {
		s.data[row.ID] = row
	}

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	if s.dropped {
		return ErrNoTable
	}

	delete(s.data, id)

	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (reviewing.Row, error) {
	if s.dropped {
		return reviewing.Row{}, ErrNoTable
	}

	row, ok := s.data[id]
	if !ok {
		return reviewing.Row{}, &NoReviewError{ID: id}
	}

	return row, nil
}

func (s *MemoryStore) All(_ context.Context) ([]reviewing.Row, error) {
	if s.dropped {
		return nil, ErrNoTable
	}

	ret := make([]reviewing.Row, 0, len(s.data))

	// IDs are handed out in increasing order so sorting them gives insertion order.
	for _, id := range slices.Sorted(maps.Keys(s.data)) {
		ret = append(ret, s.data[id])
	}

	return ret, nil
}
