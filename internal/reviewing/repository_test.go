package reviewing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gaqzi/employee-reviews/internal/platform/action"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
	"github.com/gaqzi/employee-reviews/internal/reviewing/storage"
	"github.com/gaqzi/employee-reviews/test/a"
)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) CreateTable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *storageMock) DropTable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *storageMock) Insert(ctx context.Context, row reviewing.Row) (int64, error) {
	args := m.Called(ctx, row)
	return args.Get(0).(int64), args.Error(1)
}

func (m *storageMock) Update(ctx context.Context, row reviewing.Row) error {
	return m.Called(ctx, row).Error(0)
}

func (m *storageMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *storageMock) Get(ctx context.Context, id int64) (reviewing.Row, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(reviewing.Row), args.Error(1)
}

func (m *storageMock) All(ctx context.Context) ([]reviewing.Row, error) {
	args := m.Called(ctx)
	return args.Get(0).([]reviewing.Row), args.Error(1)
}

type employeesMock struct {
	mock.Mock
}

func (m *employeesMock) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type builderRepository struct {
	store        *storageMock
	employees    *employeesMock
	cache        *reviewing.Cache
	actionMapper *action.Mapper
	opts         []reviewing.Option
}

func newRepository() builderRepository {
	return builderRepository{
		store:     new(storageMock),
		employees: new(employeesMock),
		cache:     reviewing.NewCache(),
	}
}

func (b builderRepository) Build(t *testing.T) *reviewing.Repository {
	t.Helper()
	b.store.Test(t)
	b.employees.Test(t)

	opts := b.opts
	if b.actionMapper != nil {
		opts = append(opts, reviewing.WithActionMapper(b.actionMapper))
	}

	return reviewing.NewRepository(b.store, b.employees, b.cache, opts...)
}

func (b builderRepository) employeeExists(id int64) builderRepository {
	b.employees.On("Exists", mock.Anything, id).Return(true, nil)

	return b
}

func (b builderRepository) employeeMissing(id int64) builderRepository {
	b.employees.On("Exists", mock.Anything, id).Return(false, nil)

	return b
}

func (b builderRepository) employeeFail(err ...error) builderRepository {
	if err == nil {
		err = append(err, errors.New("uh-oh"))
	}

	b.employees.On("Exists", mock.Anything, mock.Anything).Return(false, err[0])

	return b
}

func (b builderRepository) insert(id int64) builderRepository {
	b.store.On("Insert", mock.Anything, mock.IsType(reviewing.Row{})).Return(id, nil)

	return b
}

func (b builderRepository) insertFail(err ...error) builderRepository {
	if err == nil {
		err = append(err, errors.New("uh-oh"))
	}

	b.store.On("Insert", mock.Anything, mock.Anything).Return(int64(0), err[0])

	return b
}

func (b builderRepository) get(row reviewing.Row) builderRepository {
	b.store.On("Get", mock.Anything, row.ID).Return(row, nil)

	return b
}

func (b builderRepository) getMissing(id int64) builderRepository {
	b.store.On("Get", mock.Anything, id).Return(reviewing.Row{}, &storage.NoReviewError{ID: id})

	return b
}

func (b builderRepository) saveAction(err error) builderRepository {
	if b.actionMapper == nil {
		b.actionMapper = &action.Mapper{}
	}
	b.actionMapper.Add("Save", func(_ context.Context, _ *reviewing.Review) error { return err })

	return b
}

func (b builderRepository) withOptions(opts ...reviewing.Option) builderRepository {
	b.opts = append(b.opts, opts...)

	return b
}

func TestRepository_Create(t *testing.T) {
	t.Run("fails with InvalidArgumentError before year 2000", func(t *testing.T) {
		repo := newRepository().Build(t)

		_, err := repo.Create(context.Background(), 1999, "x", 1)

		var invalid *reviewing.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, "year", invalid.Field)
		require.EqualError(t, err, "invalid year: must be greater than or equal to 2000")

		var errs validator.ValidationErrors
		require.ErrorAs(t, err, &errs, "expected the validation errors to be reachable")
	})

	t.Run("fails with InvalidArgumentError on an empty summary", func(t *testing.T) {
		repo := newRepository().Build(t)

		_, err := repo.Create(context.Background(), 2022, "", 1)

		var invalid *reviewing.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, "summary", invalid.Field)
	})

	t.Run("fails with ReferenceNotFoundError when the employee doesn't exist", func(t *testing.T) {
		repo := newRepository().employeeMissing(999).Build(t)

		_, err := repo.Create(context.Background(), 2022, "x", 999)

		var notFound *reviewing.ReferenceNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, int64(999), notFound.EmployeeID)
		require.EqualError(t, err, "employee with id 999 does not exist")
	})

	t.Run("wraps the error when the employee can't be looked up", func(t *testing.T) {
		repo := newRepository().employeeFail().Build(t)

		_, err := repo.Create(context.Background(), 2022, "x", 1)

		require.ErrorContains(t, err, "failed to check employee 1: uh-oh")
	})

	t.Run("wraps any error from the store and returns it", func(t *testing.T) {
		b := newRepository().employeeExists(1).insertFail()
		repo := b.Build(t)

		_, err := repo.Create(context.Background(), 2022, "x", 1)

		require.ErrorContains(t, err, "failed to save review in storage: uh-oh")
		require.Zero(t, b.cache.Len(), "expected nothing registered when saving failed")
	})

	t.Run("saves and registers the review under the assigned ID", func(t *testing.T) {
		b := newRepository().employeeExists(1).insert(7)
		repo := b.Build(t)

		review, err := repo.Create(context.Background(), 2022, "Great year", 1)

		require.NoError(t, err)
		require.Equal(t, int64(7), review.ID)
		require.Equal(t, 2022, review.Year)
		require.Equal(t, "Great year", review.Summary)
		require.Equal(t, int64(1), review.EmployeeID())

		cached, ok := repo.Cached(7)
		require.True(t, ok)
		require.Same(t, review, cached)
		b.store.AssertCalled(t, "Insert", mock.Anything, reviewing.Row{Year: 2022, Summary: "Great year", EmployeeID: 1})
	})
}

func TestRepository_CreateFromValues(t *testing.T) {
	for name, tc := range map[string]struct {
		year, summary, employeeID any
		field                     string
	}{
		"year given as a string":      {"2020", "x", 1, "year"},
		"year with a fraction":        {2020.5, "x", 1, "year"},
		"year before 2000":            {1999, "x", 1, "year"},
		"empty summary":               {2022, "", 1, "summary"},
		"summary that isn't a string": {2022, 5, 1, "summary"},
		"missing summary":             {2022, nil, 1, "summary"},
		"employee id as letters":      {2022, "x", "abc", "employee_id"},
		"employee id as a bool":       {2022, "x", true, "employee_id"},
	} {
		t.Run("fails with InvalidArgumentError for "+name, func(t *testing.T) {
			repo := newRepository().Build(t)

			_, err := repo.CreateFromValues(context.Background(), tc.year, tc.summary, tc.employeeID)

			var invalid *reviewing.InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, tc.field, invalid.Field)
		})
	}

	t.Run("a year too large to store is out of range rather than not an integer", func(t *testing.T) {
		repo := newRepository().Build(t)

		_, err := repo.CreateFromValues(context.Background(), json.Number("3000000000"), "x", 1)

		var invalid *reviewing.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, "year", invalid.Field)
		require.Equal(t, "must be less than or equal to 2147483647", invalid.Reason)
	})

	t.Run("accepts any integer type", func(t *testing.T) {
		repo := newRepository().employeeExists(3).insert(1).Build(t)

		review, err := repo.CreateFromValues(context.Background(), int32(2022), "Solid", uint8(3))

		require.NoError(t, err)
		require.Equal(t, 2022, review.Year)
		require.Equal(t, int64(3), review.EmployeeID())
	})
}

func TestRepository_Save(t *testing.T) {
	t.Run("runs the save action first and stops if it fails", func(t *testing.T) {
		repo := newRepository().saveAction(errors.New("nope")).Build(t)

		err := repo.Save(context.Background(), a.Review().Build())

		require.EqualError(t, err, "nope")
	})

	t.Run("saving an already saved review inserts a new row and moves the mapping", func(t *testing.T) {
		b := newRepository().insert(2)
		repo := b.Build(t)
		review := a.Review().Build()
		b.cache.Put(1, review)
		review.ID = 1

		require.NoError(t, repo.Save(context.Background(), review))

		require.Equal(t, int64(2), review.ID)
		_, ok := repo.Cached(1)
		require.False(t, ok, "expected the old mapping to be removed")
		cached, ok := repo.Cached(2)
		require.True(t, ok)
		require.Same(t, review, cached)
	})

	t.Run("validates year and summary so a review can't bypass Create", func(t *testing.T) {
		repo := newRepository().Build(t)
		review := a.Review().Build()
		review.Year = 1990

		err := repo.Save(context.Background(), review)

		var invalid *reviewing.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestRepository_Update(t *testing.T) {
	t.Run("a review that was never saved returns ErrNotPersisted", func(t *testing.T) {
		repo := newRepository().Build(t)

		err := repo.Update(context.Background(), a.Review().IsNotSaved().Build())

		require.ErrorIs(t, err, reviewing.ErrNotPersisted)
	})

	t.Run("pushes the current values to storage", func(t *testing.T) {
		b := newRepository()
		b.store.On("Update", mock.Anything, reviewing.Row{ID: 1, Year: 2030, Summary: "Changed", EmployeeID: 1}).Return(nil)
		repo := b.Build(t)
		review := a.Review().IsSaved().Build()
		review.Year = 2030
		review.Summary = "Changed"

		require.NoError(t, repo.Update(context.Background(), review))

		b.store.AssertExpectations(t)
	})

	t.Run("rejects values that fail validation without touching storage", func(t *testing.T) {
		repo := newRepository().Build(t)
		review := a.Review().IsSaved().Build()
		review.Summary = ""

		err := repo.Update(context.Background(), review)

		var invalid *reviewing.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("wraps errors from the store", func(t *testing.T) {
		b := newRepository()
		b.store.On("Update", mock.Anything, mock.Anything).Return(errors.New("uh-oh"))
		repo := b.Build(t)

		err := repo.Update(context.Background(), a.Review().IsSaved().Build())

		require.ErrorContains(t, err, "failed to update review 1: uh-oh")
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("a review that was never saved returns ErrNotPersisted", func(t *testing.T) {
		repo := newRepository().Build(t)

		err := repo.Delete(context.Background(), a.Review().IsNotSaved().Build())

		require.ErrorIs(t, err, reviewing.ErrNotPersisted)
	})

	t.Run("removes the row and the mapping, and resets the ID", func(t *testing.T) {
		b := newRepository()
		b.store.On("Delete", mock.Anything, int64(1)).Return(nil)
		repo := b.Build(t)
		review := a.Review().IsSaved().Build()
		b.cache.Put(1, review)

		require.NoError(t, repo.Delete(context.Background(), review))

		require.Zero(t, review.ID)
		require.False(t, review.IsPersisted())
		_, ok := repo.Cached(1)
		require.False(t, ok)
	})

	t.Run("a review missing from the identity map is still deleted", func(t *testing.T) {
		b := newRepository()
		b.store.On("Delete", mock.Anything, int64(1)).Return(nil)
		repo := b.Build(t)
		review := a.Review().IsSaved().Build()

		require.NoError(t, repo.Delete(context.Background(), review))

		require.Zero(t, review.ID)
	})

	t.Run("keeps the ID when storage fails", func(t *testing.T) {
		b := newRepository()
		b.store.On("Delete", mock.Anything, int64(1)).Return(errors.New("uh-oh"))
		repo := b.Build(t)
		review := a.Review().IsSaved().Build()

		err := repo.Delete(context.Background(), review)

		require.ErrorContains(t, err, "failed to delete review 1: uh-oh")
		require.Equal(t, int64(1), review.ID)
	})
}

func TestRepository_FindByID(t *testing.T) {
	t.Run("returns nil without an error when there's no such review", func(t *testing.T) {
		repo := newRepository().getMissing(5).Build(t)

		review, err := repo.FindByID(context.Background(), 5)

		require.NoError(t, err)
		require.Nil(t, review)
	})

	t.Run("wraps other errors from the store", func(t *testing.T) {
		b := newRepository()
		b.store.On("Get", mock.Anything, int64(5)).Return(reviewing.Row{}, errors.New("uh-oh"))
		repo := b.Build(t)

		_, err := repo.FindByID(context.Background(), 5)

		require.ErrorContains(t, err, "failed to get review: uh-oh")
	})

	t.Run("checks the employee again when loading", func(t *testing.T) {
		row := a.Review().IsSaved().WithEmployeeID(4).Row()
		repo := newRepository().get(row).employeeMissing(4).Build(t)

		_, err := repo.FindByID(context.Background(), row.ID)

		var notFound *reviewing.ReferenceNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("by default every load replaces the mapped instance", func(t *testing.T) {
		row := a.Review().IsSaved().Row()
		repo := newRepository().get(row).employeeExists(row.EmployeeID).Build(t)

		first, err := repo.FindByID(context.Background(), row.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(context.Background(), row.ID)
		require.NoError(t, err)

		require.NotSame(t, first, second, "expected a new instance on every load")
		require.Equal(t, first, second)
		cached, _ := repo.Cached(row.ID)
		require.Same(t, second, cached, "expected the latest load to be the mapped one")
	})

	t.Run("with ReuseOnLoad the mapped instance is returned", func(t *testing.T) {
		row := a.Review().IsSaved().Row()
		repo := newRepository().
			get(row).
			employeeExists(row.EmployeeID).
			withOptions(reviewing.WithLoadPolicy(reviewing.ReuseOnLoad)).
			Build(t)

		first, err := repo.FindByID(context.Background(), row.ID)
		require.NoError(t, err)
		first.Summary = "changed in memory"
		second, err := repo.FindByID(context.Background(), row.ID)
		require.NoError(t, err)

		require.Same(t, first, second)
		require.Equal(t, "changed in memory", second.Summary)
	})
}

func TestRepository_All(t *testing.T) {
	t.Run("loads every row", func(t *testing.T) {
		rows := []reviewing.Row{
			a.Review().WithID(1).Row(),
			a.Review().WithID(2).WithYear(2023).Row(),
		}
		b := newRepository().employeeExists(1)
		b.store.On("All", mock.Anything).Return(rows, nil)
		repo := b.Build(t)

		reviews, err := repo.All(context.Background())

		require.NoError(t, err)
		require.Len(t, reviews, 2)
		require.Equal(t, int64(1), reviews[0].ID)
		require.Equal(t, 2023, reviews[1].Year)
		require.Equal(t, 2, b.cache.Len())
	})

	t.Run("wraps errors from the store", func(t *testing.T) {
		b := newRepository()
		b.store.On("All", mock.Anything).Return([]reviewing.Row(nil), errors.New("uh-oh"))
		repo := b.Build(t)

		_, err := repo.All(context.Background())

		require.ErrorContains(t, err, "failed to get all reviews: uh-oh")
	})
}

func TestRepository_Tables(t *testing.T) {
	b := newRepository()
	b.store.On("CreateTable", mock.Anything).Return(nil)
	b.store.On("DropTable", mock.Anything).Return(errors.New("uh-oh"))
	repo := b.Build(t)

	require.NoError(t, repo.CreateTable(context.Background()))
	require.ErrorContains(t, repo.DropTable(context.Background()), "failed to drop reviews table: uh-oh")
}
