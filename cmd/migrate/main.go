package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"employee_reviews/internal/adapters/observability"
	redisad "employee_reviews/internal/adapters/redis"
	"employee_reviews/internal/app"
	"employee_reviews/internal/shared"
	"employee_reviews/internal/storage/sqlstore"
)

const usage = "usage: migrate up|down"

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, dialect, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	defer db.Close()

	repo := sqlstore.New(db, dialect)
	emps := app.NewEmployees(repo)
	if cfg.RedisAddr != "" {
		// the API caches employee lookups; a drop here must evict them
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		emps.EvictOnDrop(app.NewCachedEmployees(emps, cache, cfg.CacheTTL))
	}
	revs := app.NewReviews(repo, emps)

	if err := run(ctx, os.Args[1], emps, revs); err != nil {
		log.Fatal().Err(err).Str("direction", os.Args[1]).Msg("migration failed")
	}
	log.Info().Str("direction", os.Args[1]).Msg("migration completed")
}

type table interface {
	CreateTable(ctx context.Context) error
	DropTable(ctx context.Context) error
}

// run creates parents before children and drops in the reverse order.
func run(ctx context.Context, direction string, employees, reviews table) error {
	switch direction {
	case "up":
		if err := employees.CreateTable(ctx); err != nil {
			return err
		}
		return reviews.CreateTable(ctx)
	case "down":
		if err := reviews.DropTable(ctx); err != nil {
			return err
		}
		return employees.DropTable(ctx)
	default:
		return fmt.Errorf("unknown direction %q; %s", direction, usage)
	}
}
