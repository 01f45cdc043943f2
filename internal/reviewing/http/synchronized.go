package http

import (
	"context"
	"sync"

	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

// Synchronized serializes every call to the repository.
// The identity map behind it must not be used by concurrent requests.
func Synchronized(repo ReviewRepository) ReviewRepository {
	return &synchronized{repo: repo}
}

type synchronized struct {
	mu   sync.Mutex
	repo ReviewRepository
}

func (s *synchronized) Create(ctx context.Context, year int, summary string, employeeID int64) (*reviewing.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Create(ctx, year, summary, employeeID)
}

func (s *synchronized) CreateFromValues(ctx context.Context, year, summary, employeeID any) (*reviewing.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.CreateFromValues(ctx, year, summary, employeeID)
}

func (s *synchronized) FindByID(ctx context.Context, id int64) (*reviewing.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.FindByID(ctx, id)
}

func (s *synchronized) All(ctx context.Context) ([]*reviewing.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.All(ctx)
}

func (s *synchronized) Update(ctx context.Context, review *reviewing.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Update(ctx, review)
}

func (s *synchronized) Delete(ctx context.Context, review *reviewing.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Delete(ctx, review)
}

func (s *synchronized) SetEmployeeID(ctx context.Context, review *reviewing.Review, employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.SetEmployeeID(ctx, review, employeeID)
}
