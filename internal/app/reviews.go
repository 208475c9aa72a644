package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"employee_reviews/internal/domain"
)

// CacheClearer is implemented by lookups that hold cached state.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// Reviews binds the Review type to its table: schema, construction,
// retrieval and persistence. Each write is one autocommitted statement.
type Reviews struct {
	repo      domain.ReviewRepository
	employees domain.EmployeeFinder
}

func NewReviews(r domain.ReviewRepository, employees domain.EmployeeFinder) *Reviews {
	return &Reviews{repo: r, employees: employees}
}

// Employees exposes the lookup used to validate employee references, so
// callers mutating a Review use the same source of truth.
func (s *Reviews) Employees() domain.EmployeeFinder { return s.employees }

func (s *Reviews) CreateTable(ctx context.Context) error {
	if err := s.repo.CreateReviewsTable(ctx); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	log.Info().Str("table", "reviews").Msg("table ensured")
	return nil
}

func (s *Reviews) DropTable(ctx context.Context) error {
	if err := s.repo.DropReviewsTable(ctx); err != nil {
		return fmt.Errorf("drop reviews table: %w", err)
	}
	log.Info().Str("table", "reviews").Msg("table dropped")
	return nil
}

// Create validates, builds and inserts a review in one call.
func (s *Reviews) Create(ctx context.Context, year int, summary string, employeeID int64) (*domain.Review, error) {
	if year < domain.MinReviewYear {
		return nil, &domain.FieldError{Field: "year", Msg: fmt.Sprintf("must be >= %d", domain.MinReviewYear)}
	}
	if summary == "" {
		return nil, &domain.FieldError{Field: "summary", Msg: "must be a non-empty string"}
	}
	r, err := domain.NewReview(ctx, s.employees, year, summary, employeeID, nil)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// FindByID returns (nil, nil) when no row has id.
func (s *Reviews) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	row, err := s.repo.FindReviewByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review %d: %w", id, err)
	}
	return s.instanceFromRow(ctx, row)
}

func (s *Reviews) GetAll(ctx context.Context) ([]*domain.Review, error) {
	rows, err := s.repo.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]*domain.Review, 0, len(rows))
	for _, row := range rows {
		r, err := s.instanceFromRow(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// instanceFromRow hydrates a stored row through the validating constructor.
func (s *Reviews) instanceFromRow(ctx context.Context, row domain.ReviewRow) (*domain.Review, error) {
	id := row.ID
	r, err := domain.NewReview(ctx, s.employees, row.Year, row.Summary, row.EmployeeID, &id)
	if err != nil {
		return nil, fmt.Errorf("hydrate review %d: %w", row.ID, err)
	}
	return r, nil
}

// Save inserts an unsaved review and records its new id, or updates every
// business column of a persisted one.
func (s *Reviews) Save(ctx context.Context, r *domain.Review) error {
	if !r.Persisted() {
		id, err := s.repo.InsertReview(ctx, r.Row())
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		r.AssignID(id)
		return nil
	}
	if err := s.repo.UpdateReview(ctx, r.ID(), r.Row()); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Update issues the keyed update whether or not r has an id. On an unsaved
// review the key binds as NULL and no row changes.
func (s *Reviews) Update(ctx context.Context, r *domain.Review) error {
	if !r.Persisted() {
		log.Warn().Int64("employee_id", r.EmployeeID()).Msg("update called on an unsaved review")
	}
	if err := s.repo.UpdateReview(ctx, r.ID(), r.Row()); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Delete removes r's row and tombstones r. Deleting an unsaved review
// fails with ErrInvalidOperation.
func (s *Reviews) Delete(ctx context.Context, r *domain.Review) error {
	id := r.ID()
	if id == nil {
		return fmt.Errorf("%w: cannot delete a review that has not been saved", domain.ErrInvalidOperation)
	}
	if err := s.repo.DeleteReview(ctx, *id); err != nil {
		return fmt.Errorf("delete review %d: %w", *id, err)
	}
	r.ClearID()
	return nil
}

// ClearCache drops cached employee lookups when the configured lookup keeps any.
func (s *Reviews) ClearCache(ctx context.Context) error {
	c, ok := s.employees.(CacheClearer)
	if !ok {
		return nil
	}
	log.Info().Msg("clearing employee lookup cache")
	return c.Clear(ctx)
}
