package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "employee_reviews/internal/adapters/http_server"
	"employee_reviews/internal/adapters/observability"
	redisad "employee_reviews/internal/adapters/redis"
	"employee_reviews/internal/app"
	"employee_reviews/internal/domain"
	"employee_reviews/internal/shared"
	"employee_reviews/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, dialect, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// deps
	repo := sqlstore.New(db, dialect)
	emps := app.NewEmployees(repo)
	var lookup domain.EmployeeFinder = emps
	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; continuing, lookups will fall through")
		}
		cached := app.NewCachedEmployees(emps, cache, cfg.CacheTTL)
		emps.EvictOnDrop(cached)
		lookup = cached
	}
	revs := app.NewReviews(repo, lookup)

	if cfg.AutoMigrate {
		// employees first: reviews.employee_id references it
		if err := emps.CreateTable(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate employees")
		}
		if err := revs.CreateTable(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate reviews")
		}
	}

	// http
	srv := server.New(server.Options{RPS: cfg.APIRPS, Burst: cfg.APIBurst})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Reviews: revs, Employees: emps})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("stopped")
}
