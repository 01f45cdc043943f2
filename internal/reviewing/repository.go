package reviewing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaqzi/employee-reviews/internal/platform/action"
	"github.com/gaqzi/employee-reviews/internal/platform/identity"
)

// LoadPolicy decides what loading a row does when its ID is already in the identity map.
type LoadPolicy int

const (
	// ReplaceOnLoad builds a fresh Review from the row and replaces the mapped instance.
	ReplaceOnLoad LoadPolicy = iota
	// ReuseOnLoad returns the mapped instance untouched and only builds on a miss.
	ReuseOnLoad
)

// Cache is the identity map a Repository registers reviews in.
type Cache = identity.Map[int64, *Review]

func NewCache() *Cache {
	return identity.NewMap[int64, *Review]()
}

// Repository moves reviews in and out of storage and keeps the identity map current.
// It's not safe for concurrent use.
type Repository struct {
	store     Storage
	employees EmployeeChecker
	cache     *Cache
	actions   *action.Mapper
	policy    LoadPolicy
	log       *slog.Logger
}

type Option func(r *Repository)

// WithActionMapper replaces the pre-hooks run before writing to storage.
func WithActionMapper(m *action.Mapper) Option {
	return func(r *Repository) {
		r.actions = m
	}
}

func WithLoadPolicy(p LoadPolicy) Option {
	return func(r *Repository) {
		r.policy = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// NewRepository creates a repository sharing cache. A nil cache gets a private one.
func NewRepository(store Storage, employees EmployeeChecker, cache *Cache, opts ...Option) *Repository {
	if cache == nil {
		cache = NewCache()
	}

	r := &Repository{
		store:     store,
		employees: employees,
		cache:     cache,
		actions:   repositoryActions(),
		policy:    ReplaceOnLoad,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Repository) CreateTable(ctx context.Context) error {
	if err := r.store.CreateTable(ctx); err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}

	return nil
}

func (r *Repository) DropTable(ctx context.Context) error {
	if err := r.store.DropTable(ctx); err != nil {
		return fmt.Errorf("failed to drop reviews table: %w", err)
	}

	return nil
}

// Create validates the values, checks the employee exists, and saves the new review.
func (r *Repository) Create(ctx context.Context, year int, summary string, employeeID int64) (*Review, error) {
	review := &Review{Year: year, Summary: summary}
	if err := review.Validate(ctx); err != nil {
		return nil, err
	}

	if err := review.SetEmployeeID(ctx, r.employees, employeeID); err != nil {
		return nil, err
	}

	if err := r.Save(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Save inserts the review as a new row and registers it under the assigned ID.
// Calling it again for the same review inserts another row.
func (r *Repository) Save(ctx context.Context, review *Review) error {
	before, err := action.Lookup[func(context.Context, *Review) error](r.actions, "Save")
	if err != nil {
		return fmt.Errorf("failed to get save action: %w", err)
	}
	if err := before(ctx, review); err != nil {
		return err
	}

	id, err := r.store.Insert(ctx, review.row())
	if err != nil {
		return fmt.Errorf("failed to save review in storage: %w", err)
	}

	if review.IsPersisted() {
		if mapped, ok := r.cache.Get(review.ID); ok && mapped == review {
			r.cache.Delete(review.ID)
		}
	}

	review.ID = id
	r.cache.Put(id, review)
	r.log.DebugContext(ctx, "saved review", "id", id, "employee_id", review.employeeID)

	return nil
}

// Update writes the review's current values to its row.
// A row that has disappeared from storage is not an error.
func (r *Repository) Update(ctx context.Context, review *Review) error {
	if !review.IsPersisted() {
		return ErrNotPersisted
	}

	before, err := action.Lookup[func(context.Context, *Review) error](r.actions, "Update")
	if err != nil {
		return fmt.Errorf("failed to get update action: %w", err)
	}
	if err := before(ctx, review); err != nil {
		return err
	}

	if err := r.store.Update(ctx, review.row()); err != nil {
		return fmt.Errorf("failed to update review %d: %w", review.ID, err)
	}
	r.log.DebugContext(ctx, "updated review", "id", review.ID)

	return nil
}

// Delete removes the review's row and identity map entry, and resets its ID.
// The review itself stays usable, saving it again gives it a new ID.
func (r *Repository) Delete(ctx context.Context, review *Review) error {
	if !review.IsPersisted() {
		return ErrNotPersisted
	}

	if err := r.store.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("failed to delete review %d: %w", review.ID, err)
	}

	mapped := r.cache.Delete(review.ID)
	r.log.DebugContext(ctx, "deleted review", "id", review.ID, "mapped", mapped)
	review.ID = 0

	return nil
}

// Load turns a stored row into the review registered for its ID.
// The employee is checked again, the year and summary are trusted.
func (r *Repository) Load(ctx context.Context, row Row) (*Review, error) {
	if r.policy == ReuseOnLoad {
		if review, ok := r.cache.Get(row.ID); ok {
			return review, nil
		}
	}

	review, err := NewReview(ctx, r.employees, row.Year, row.Summary, row.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review %d: %w", row.ID, err)
	}

	review.ID = row.ID
	r.cache.Put(review.ID, review)

	return review, nil
}

// FindByID returns the review stored under id, or nil and no error when there isn't one.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Review, error) {
	row, err := r.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return r.Load(ctx, row)
}

// All returns every stored review in storage order.
func (r *Repository) All(ctx context.Context) ([]*Review, error) {
	rows, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all reviews: %w", err)
	}

	ret := make([]*Review, 0, len(rows))
	for _, row := range rows {
		review, err := r.Load(ctx, row)
		if err != nil {
			return nil, err
		}
		ret = append(ret, review)
	}

	return ret, nil
}

// Cached returns the instance in the identity map for id without touching storage.
func (r *Repository) Cached(id int64) (*Review, bool) {
	return r.cache.Get(id)
}

// SetEmployeeID reassigns the review's employee using the repository's employee check.
// Like any field change it's only stored after Update.
func (r *Repository) SetEmployeeID(ctx context.Context, review *Review, employeeID int64) error {
	return review.SetEmployeeID(ctx, r.employees, employeeID)
}
