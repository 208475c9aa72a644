package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"employee_reviews/internal/app"
	"employee_reviews/internal/domain"
)

func TestEmployees_CreateAndFind(t *testing.T) {
	store := newFakeStore()
	emps := app.NewEmployees(store)
	ctx := context.Background()

	e, err := emps.Create(ctx, "Ana", "Engineer")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if e.ID != 1 || e.Name != "Ana" {
		t.Fatalf("unexpected employee: %+v", e)
	}

	got, err := emps.FindByID(ctx, e.ID)
	if err != nil || got == nil || got.Name != "Ana" {
		t.Fatalf("unexpected find: %+v %v", got, err)
	}

	missing, err := emps.FindByID(ctx, 42)
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for absent employee, got %+v %v", missing, err)
	}
}

func TestEmployees_CreateRejectsBlankName(t *testing.T) {
	emps := app.NewEmployees(newFakeStore())
	if _, err := emps.Create(context.Background(), "  ", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestEmployees_FindPropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errBoom
	if _, err := app.NewEmployees(store).FindByID(context.Background(), 1); !errors.Is(err, errBoom) {
		t.Fatalf("want store error, got %v", err)
	}
}

func TestCachedEmployees_MissThenHit(t *testing.T) {
	store := newFakeStore()
	emps := app.NewEmployees(store)
	ctx := context.Background()
	e := mustEmployee(t, emps, "Ana")

	cache := &fakeCache{}
	cached := app.NewCachedEmployees(emps, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	got, err := cached.FindByID(ctx, e.ID)
	if err != nil || got == nil || got.Name != "Ana" {
		t.Fatalf("unexpected: %+v %v", got, err)
	}
	if store.findCalls != 1 {
		t.Fatalf("expected one store lookup, got %d", store.findCalls)
	}

	// Hit (served from cache)
	got, err = cached.FindByID(ctx, e.ID)
	if err != nil || got == nil || got.Name != "Ana" {
		t.Fatalf("unexpected: %+v %v", got, err)
	}
	if store.findCalls != 1 {
		t.Fatalf("second lookup should come from cache, store calls=%d", store.findCalls)
	}

	if err := cached.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := cached.FindByID(ctx, e.ID); err != nil {
		t.Fatalf("err: %v", err)
	}
	if store.findCalls != 2 {
		t.Fatalf("cleared cache should forward to store, calls=%d", store.findCalls)
	}
}

func TestCachedEmployees_MissesAreNotCached(t *testing.T) {
	store := newFakeStore()
	emps := app.NewEmployees(store)
	cache := &fakeCache{}
	cached := app.NewCachedEmployees(emps, cache, time.Minute)
	ctx := context.Background()

	if got, err := cached.FindByID(ctx, 1); err != nil || got != nil {
		t.Fatalf("expected miss, got %+v %v", got, err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("miss must not be cached: %v", cache.store)
	}

	// employee created after the miss is visible immediately
	mustEmployee(t, emps, "Late")
	if got, err := cached.FindByID(ctx, 1); err != nil || got == nil {
		t.Fatalf("expected new employee, got %+v %v", got, err)
	}
}

func TestCachedEmployees_CacheErrorFallsThrough(t *testing.T) {
	store := newFakeStore()
	emps := app.NewEmployees(store)
	mustEmployee(t, emps, "Ana")

	cached := app.NewCachedEmployees(emps, &fakeCache{getErr: errBoom}, time.Minute)
	got, err := cached.FindByID(context.Background(), 1)
	if err != nil || got == nil {
		t.Fatalf("cache failure should fall back to store: %+v %v", got, err)
	}
}

type failingClearer struct{}

func (failingClearer) Clear(ctx context.Context) error { return errBoom }

func TestEmployees_DropTableEvictsCachedLookups(t *testing.T) {
	store := newFakeStore()
	emps := app.NewEmployees(store)
	e := mustEmployee(t, emps, "Ana")
	ctx := context.Background()

	cache := &fakeCache{}
	cached := app.NewCachedEmployees(emps, cache, time.Minute)
	emps.EvictOnDrop(cached)
	if _, err := cached.FindByID(ctx, e.ID); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cache.store) != 1 {
		t.Fatalf("lookup should be cached: %v", cache.store)
	}

	if err := emps.DropTable(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("drop must evict cached employees: %v", cache.store)
	}
}

func TestEmployees_DropTableReportsEvictionFailure(t *testing.T) {
	emps := app.NewEmployees(newFakeStore())
	emps.EvictOnDrop(failingClearer{})
	if err := emps.DropTable(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("want eviction error, got %v", err)
	}
}
