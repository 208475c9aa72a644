package domain

import (
	"context"
	"fmt"
	"strings"
)

const MinReviewYear = 2000

// Review is a performance review bound to the reviews table.
// Business attributes are only reachable through setters, so a Review
// never holds a year, summary or employee reference that failed validation.
type Review struct {
	id         *int64
	year       int
	summary    string
	employeeID int64
}

// NewReview runs every setter; id is nil for a review that was never saved.
func NewReview(ctx context.Context, employees EmployeeFinder, year int, summary string, employeeID int64, id *int64) (*Review, error) {
	r := &Review{}
	if err := r.SetYear(year); err != nil {
		return nil, err
	}
	if err := r.SetSummary(summary); err != nil {
		return nil, err
	}
	if err := r.SetEmployeeID(ctx, employees, employeeID); err != nil {
		return nil, err
	}
	if id != nil {
		v := *id
		r.id = &v
	}
	return r, nil
}

// ID returns the surrogate key, or nil when the review is not persisted.
func (r *Review) ID() *int64 {
	if r.id == nil {
		return nil
	}
	v := *r.id
	return &v
}

// Persisted reports whether the review currently maps to a stored row.
func (r *Review) Persisted() bool { return r.id != nil }

func (r *Review) Year() int         { return r.year }
func (r *Review) Summary() string   { return r.summary }
func (r *Review) EmployeeID() int64 { return r.employeeID }

func (r *Review) SetYear(year int) error {
	if year < MinReviewYear {
		return invalid("year", "must be an integer greater than or equal to %d", MinReviewYear)
	}
	r.year = year
	return nil
}

func (r *Review) SetSummary(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return invalid("summary", "must be a non-empty string")
	}
	r.summary = summary
	return nil
}

// SetEmployeeID accepts id only if employees knows about it right now.
func (r *Review) SetEmployeeID(ctx context.Context, employees EmployeeFinder, id int64) error {
	if employees == nil {
		return fmt.Errorf("review: no employee lookup configured")
	}
	e, err := employees.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("employee lookup %d: %w", id, err)
	}
	if e == nil {
		return invalid("employee_id", "employee with ID %d does not exist", id)
	}
	r.employeeID = id
	return nil
}

// Row flattens the review into its positional table shape. ID is 0 when unsaved.
func (r *Review) Row() ReviewRow {
	row := ReviewRow{Year: r.year, Summary: r.summary, EmployeeID: r.employeeID}
	if r.id != nil {
		row.ID = *r.id
	}
	return row
}

// AssignID records the store-assigned key after an insert. A key that is
// already set is kept.
func (r *Review) AssignID(id int64) {
	if r.id == nil {
		r.id = &id
	}
}

// ClearID tombstones the review after its row is deleted.
func (r *Review) ClearID() { r.id = nil }
