package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"employee_reviews/internal/adapters/observability"
	"employee_reviews/internal/domain"
)

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo implements domain.ReviewRepository and domain.EmployeeRepository
// over one shared *sql.DB. Every statement autocommits.
type Repo struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ domain.ReviewRepository   = (*Repo)(nil)
	_ domain.EmployeeRepository = (*Repo)(nil)
)

func New(db *sql.DB, d Dialect) *Repo { return &Repo{db: db, dialect: d} }

func observe(table, op string, start time.Time, err error) {
	observability.ObserveStore(table, op, err, time.Since(start))
}

func (r *Repo) exec(ctx context.Context, table, op, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, query, args...)
	observe(table, op, start, err)
	return res, err
}

// ---- schema ----

func (r *Repo) CreateEmployeesTable(ctx context.Context) error {
	_, err := r.exec(ctx, "employees", "create_table", r.dialect.createEmployees)
	return err
}

func (r *Repo) DropEmployeesTable(ctx context.Context) error {
	_, err := r.exec(ctx, "employees", "drop_table", dropEmployeesSQL)
	return err
}

func (r *Repo) CreateReviewsTable(ctx context.Context) error {
	_, err := r.exec(ctx, "reviews", "create_table", r.dialect.createReviews)
	return err
}

func (r *Repo) DropReviewsTable(ctx context.Context) error {
	_, err := r.exec(ctx, "reviews", "drop_table", dropReviewsSQL)
	return err
}

// ---- employees ----

func (r *Repo) InsertEmployee(ctx context.Context, e domain.Employee) (int64, error) {
	res, err := r.exec(ctx, "employees", "insert", insertEmployeeSQL, e.Name, valStr(e.JobTitle))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) FindEmployeeByID(ctx context.Context, id int64) (e domain.Employee, err error) {
	start := time.Now()
	defer func() { observe("employees", "find", start, err) }()

	var title sql.NullString
	row := r.db.QueryRowContext(ctx, selectEmployeeByIDSQL, id)
	if err = row.Scan(&e.ID, &e.Name, &title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Employee{}, err
	}
	if title.Valid {
		e.JobTitle = title.String
	}
	return e, nil
}

// ---- reviews ----

// mysqlNoReferencedRow is ER_NO_REFERENCED_ROW_2.
const mysqlNoReferencedRow = 1452

// employeeRef reports a missing parent row as an invalid employee_id, so a
// lookup served from a stale cache still surfaces as a caller error.
func employeeRef(err error, employeeID int64) error {
	var (
		lite sqlite3.Error
		my   *mysql.MySQLError
	)
	switch {
	case errors.As(err, &lite) && lite.ExtendedCode == sqlite3.ErrConstraintForeignKey,
		errors.As(err, &my) && my.Number == mysqlNoReferencedRow:
		return &domain.FieldError{
			Field: "employee_id",
			Msg:   fmt.Sprintf("employee with ID %d does not exist", employeeID),
		}
	}
	return err
}

func (r *Repo) InsertReview(ctx context.Context, row domain.ReviewRow) (int64, error) {
	res, err := r.exec(ctx, "reviews", "insert", insertReviewSQL, row.Year, row.Summary, row.EmployeeID)
	if err != nil {
		return 0, employeeRef(err, row.EmployeeID)
	}
	return res.LastInsertId()
}

// UpdateReview binds id as-is; a nil id becomes NULL and touches no rows.
func (r *Repo) UpdateReview(ctx context.Context, id *int64, row domain.ReviewRow) error {
	_, err := r.exec(ctx, "reviews", "update", updateReviewSQL, row.Year, row.Summary, row.EmployeeID, valInt64(id))
	return employeeRef(err, row.EmployeeID)
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, "reviews", "delete", deleteReviewSQL, id)
	return err
}

func (r *Repo) FindReviewByID(ctx context.Context, id int64) (rv domain.ReviewRow, err error) {
	start := time.Now()
	defer func() { observe("reviews", "find", start, err) }()

	row := r.db.QueryRowContext(ctx, selectReviewByIDSQL, id)
	if err = scanReview(row, &rv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.ReviewRow{}, err
	}
	return rv, nil
}

func (r *Repo) ListReviews(ctx context.Context) (out []domain.ReviewRow, err error) {
	start := time.Now()
	defer func() { observe("reviews", "list", start, err) }()

	rows, err := r.db.QueryContext(ctx, selectReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rv domain.ReviewRow
		if err = scanReview(rows, &rv); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

// Columns written by this package are never NULL, but rows inserted by
// other tools may be; those come back as zero values and fail validation
// during hydration.
func scanReview(s scanner, rv *domain.ReviewRow) error {
	var (
		year       sql.NullInt64
		summary    sql.NullString
		employeeID sql.NullInt64
	)
	if err := s.Scan(&rv.ID, &year, &summary, &employeeID); err != nil {
		return err
	}
	rv.Year = int(year.Int64)
	rv.Summary = summary.String
	rv.EmployeeID = employeeID.Int64
	return nil
}
