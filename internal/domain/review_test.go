package domain_test

import (
	"context"
	"errors"
	"testing"

	"employee_reviews/internal/domain"
)

// ---- fakes ----

type fakeEmployees struct {
	known map[int64]bool
	err   error
	calls int
}

func (f *fakeEmployees) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, nil
	}
	return &domain.Employee{ID: id, Name: "Lee"}, nil
}

func knows(ids ...int64) *fakeEmployees {
	f := &fakeEmployees{known: map[int64]bool{}}
	for _, id := range ids {
		f.known[id] = true
	}
	return f
}

// ---- tests ----

func TestNewReview_Valid(t *testing.T) {
	r, err := domain.NewReview(context.Background(), knows(1), 2023, "Good performance", 1, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if r.Persisted() || r.ID() != nil {
		t.Fatalf("new review should be unsaved, got id %v", r.ID())
	}
	if r.Year() != 2023 || r.Summary() != "Good performance" || r.EmployeeID() != 1 {
		t.Fatalf("unexpected review: %+v", r.Row())
	}
}

func TestNewReview_WithID(t *testing.T) {
	id := int64(7)
	r, err := domain.NewReview(context.Background(), knows(1), 2020, "ok", 1, &id)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	id = 99 // caller's variable must not alias the review's key
	if got := r.ID(); got == nil || *got != 7 {
		t.Fatalf("expected id 7, got %v", got)
	}
}

func TestYearValidation(t *testing.T) {
	cases := []struct {
		year int
		ok   bool
	}{
		{1999, false}, {0, false}, {-2023, false}, {2000, true}, {2001, true}, {2999, true},
	}
	for _, c := range cases {
		_, err := domain.NewReview(context.Background(), knows(1), c.year, "s", 1, nil)
		if c.ok && err != nil {
			t.Fatalf("year %d: unexpected err %v", c.year, err)
		}
		if !c.ok && !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("year %d: want ErrInvalidArgument, got %v", c.year, err)
		}
	}
}

func TestSummaryValidation(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n", "   "} {
		_, err := domain.NewReview(context.Background(), knows(1), 2020, s, 1, nil)
		var fe *domain.FieldError
		if !errors.As(err, &fe) || fe.Field != "summary" {
			t.Fatalf("summary %q: want summary FieldError, got %v", s, err)
		}
	}
	r, err := domain.NewReview(context.Background(), knows(1), 2020, "  padded  ", 1, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if r.Summary() != "  padded  " {
		t.Fatalf("summary should be stored as given, got %q", r.Summary())
	}
}

func TestSettersKeepStateOnFailure(t *testing.T) {
	emps := knows(1, 2)
	r, err := domain.NewReview(context.Background(), emps, 2021, "fine", 1, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if err := r.SetYear(1990); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if err := r.SetSummary(" "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if err := r.SetEmployeeID(context.Background(), emps, 3); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if r.Year() != 2021 || r.Summary() != "fine" || r.EmployeeID() != 1 {
		t.Fatalf("failed setters must not mutate: %+v", r.Row())
	}

	if err := r.SetEmployeeID(context.Background(), emps, 2); err != nil {
		t.Fatalf("err: %v", err)
	}
	if r.EmployeeID() != 2 {
		t.Fatalf("expected employee 2, got %d", r.EmployeeID())
	}
}

func TestSetEmployeeID_LookupError(t *testing.T) {
	boom := errors.New("db down")
	emps := &fakeEmployees{err: boom}
	_, err := domain.NewReview(context.Background(), emps, 2020, "s", 1, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("want lookup error, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("store failure should not look like a validation error")
	}
}

func TestIDLifecycle(t *testing.T) {
	r, err := domain.NewReview(context.Background(), knows(1), 2020, "s", 1, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	r.AssignID(5)
	r.AssignID(6)
	if got := r.ID(); got == nil || *got != 5 {
		t.Fatalf("assigned id should stick, got %v", got)
	}
	if r.Row().ID != 5 {
		t.Fatalf("row id: %d", r.Row().ID)
	}
	r.ClearID()
	if r.Persisted() {
		t.Fatalf("expected tombstoned review")
	}
	if r.Year() != 2020 || r.Summary() != "s" {
		t.Fatalf("tombstone must keep fields: %+v", r.Row())
	}
}

func TestEmployeeValidate(t *testing.T) {
	if err := (domain.Employee{Name: " "}).Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if err := (domain.Employee{Name: "Ana"}).Validate(); err != nil {
		t.Fatalf("err: %v", err)
	}
}
