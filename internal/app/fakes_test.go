package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"employee_reviews/internal/app"
	"employee_reviews/internal/domain"
)

// ---- fakes ----

// fakeStore is an in-memory ReviewRepository + EmployeeRepository.
type fakeStore struct {
	nextReview   int64
	nextEmployee int64
	reviews      []domain.ReviewRow
	employees    map[int64]domain.Employee
	updates      []*int64
	findCalls    int
	failWith     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{employees: map[int64]domain.Employee{}}
}

func (f *fakeStore) CreateReviewsTable(ctx context.Context) error   { return f.failWith }
func (f *fakeStore) DropReviewsTable(ctx context.Context) error     { return f.failWith }
func (f *fakeStore) CreateEmployeesTable(ctx context.Context) error { return f.failWith }
func (f *fakeStore) DropEmployeesTable(ctx context.Context) error   { return f.failWith }

func (f *fakeStore) InsertReview(ctx context.Context, row domain.ReviewRow) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.nextReview++
	row.ID = f.nextReview
	f.reviews = append(f.reviews, row)
	return row.ID, nil
}

func (f *fakeStore) UpdateReview(ctx context.Context, id *int64, row domain.ReviewRow) error {
	f.updates = append(f.updates, id)
	if id == nil {
		return nil
	}
	for i := range f.reviews {
		if f.reviews[i].ID == *id {
			row.ID = *id
			f.reviews[i] = row
		}
	}
	return nil
}

func (f *fakeStore) DeleteReview(ctx context.Context, id int64) error {
	out := f.reviews[:0]
	for _, r := range f.reviews {
		if r.ID != id {
			out = append(out, r)
		}
	}
	f.reviews = out
	return nil
}

func (f *fakeStore) FindReviewByID(ctx context.Context, id int64) (domain.ReviewRow, error) {
	if f.failWith != nil {
		return domain.ReviewRow{}, f.failWith
	}
	for _, r := range f.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ReviewRow{}, domain.ErrNotFound
}

func (f *fakeStore) ListReviews(ctx context.Context) ([]domain.ReviewRow, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]domain.ReviewRow(nil), f.reviews...), nil
}

func (f *fakeStore) InsertEmployee(ctx context.Context, e domain.Employee) (int64, error) {
	f.nextEmployee++
	e.ID = f.nextEmployee
	f.employees[e.ID] = e
	return e.ID, nil
}

func (f *fakeStore) FindEmployeeByID(ctx context.Context, id int64) (domain.Employee, error) {
	f.findCalls++
	if f.failWith != nil {
		return domain.Employee{}, f.failWith
	}
	e, ok := f.employees[id]
	if !ok {
		return domain.Employee{}, domain.ErrNotFound
	}
	return e, nil
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	store  map[string][]byte
	getErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

var errBoom = errors.New("boom")

func mustEmployee(t *testing.T, emps *app.Employees, name string) *domain.Employee {
	t.Helper()
	e, err := emps.Create(context.Background(), name, "")
	if err != nil {
		t.Fatalf("seed employee %q: %v", name, err)
	}
	return e
}
