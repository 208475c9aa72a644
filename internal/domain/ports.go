package domain

import "context"

// ReviewRow is the positional shape of a reviews row: (id, year, summary, employee_id).
type ReviewRow struct {
	ID         int64
	Year       int
	Summary    string
	EmployeeID int64
}

type ReviewRepository interface {
	// Schema
	CreateReviewsTable(ctx context.Context) error
	DropReviewsTable(ctx context.Context) error

	// Write paths
	InsertReview(ctx context.Context, row ReviewRow) (int64, error)
	UpdateReview(ctx context.Context, id *int64, row ReviewRow) error
	DeleteReview(ctx context.Context, id int64) error

	// Read paths; FindReviewByID returns ErrNotFound on absence.
	FindReviewByID(ctx context.Context, id int64) (ReviewRow, error)
	ListReviews(ctx context.Context) ([]ReviewRow, error)
}

type EmployeeRepository interface {
	CreateEmployeesTable(ctx context.Context) error
	DropEmployeesTable(ctx context.Context) error
	InsertEmployee(ctx context.Context, e Employee) (int64, error)
	FindEmployeeByID(ctx context.Context, id int64) (Employee, error)
}

// EmployeeFinder is the lookup capability a Review needs to check its
// employee reference. A nil Employee with a nil error means "no such row".
type EmployeeFinder interface {
	FindByID(ctx context.Context, id int64) (*Employee, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	DelPrefix(ctx context.Context, prefix string) error
}
