package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"employee_reviews/internal/domain"
)

type Employees struct {
	repo     domain.EmployeeRepository
	clearers []CacheClearer
}

var _ domain.EmployeeFinder = (*Employees)(nil)

func NewEmployees(r domain.EmployeeRepository) *Employees {
	return &Employees{repo: r}
}

// EvictOnDrop registers c to be cleared whenever the employees table is
// dropped, so cached lookups never outlive the rows behind them.
func (s *Employees) EvictOnDrop(c CacheClearer) {
	s.clearers = append(s.clearers, c)
}

func (s *Employees) CreateTable(ctx context.Context) error {
	if err := s.repo.CreateEmployeesTable(ctx); err != nil {
		return fmt.Errorf("create employees table: %w", err)
	}
	log.Info().Str("table", "employees").Msg("table ensured")
	return nil
}

func (s *Employees) DropTable(ctx context.Context) error {
	if err := s.repo.DropEmployeesTable(ctx); err != nil {
		return fmt.Errorf("drop employees table: %w", err)
	}
	log.Info().Str("table", "employees").Msg("table dropped")
	for _, c := range s.clearers {
		if err := c.Clear(ctx); err != nil {
			return fmt.Errorf("evict cached employees: %w", err)
		}
	}
	return nil
}

func (s *Employees) Create(ctx context.Context, name, jobTitle string) (*domain.Employee, error) {
	e := domain.Employee{Name: name, JobTitle: jobTitle}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	id, err := s.repo.InsertEmployee(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	e.ID = id
	return &e, nil
}

// FindByID returns (nil, nil) when no employee has id.
func (s *Employees) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := s.repo.FindEmployeeByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const employeeKeyPrefix = "employee:"

// CachedEmployees keeps positive employee lookups in a cache. Misses are
// always forwarded so a freshly created employee is visible at once.
type CachedEmployees struct {
	next  domain.EmployeeFinder
	cache domain.Cache
	ttl   time.Duration
}

var _ domain.EmployeeFinder = (*CachedEmployees)(nil)

func NewCachedEmployees(next domain.EmployeeFinder, c domain.Cache, ttl time.Duration) *CachedEmployees {
	return &CachedEmployees{next: next, cache: c, ttl: ttl}
}

func (c *CachedEmployees) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	key := employeeKeyPrefix + strconv.FormatInt(id, 10)
	var e domain.Employee
	if ok, err := c.cache.Get(ctx, key, &e); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	} else if ok {
		return &e, nil
	}

	found, err := c.next.FindByID(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	if err := c.cache.Set(ctx, key, found, int(c.ttl.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return found, nil
}

// Clear evicts every cached employee.
func (c *CachedEmployees) Clear(ctx context.Context) error {
	return c.cache.DelPrefix(ctx, employeeKeyPrefix)
}
