package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"trip-planner/internal/adapters/cache"
	"trip-planner/internal/adapters/optimizer"
	"trip-planner/internal/adapters/repositories"
	"trip-planner/internal/config"
	"trip-planner/internal/platform/db"
	"trip-planner/internal/ports"
	"trip-planner/internal/services"
)

// Deps are the concrete adapters behind the planner's ports.
type Deps struct {
	Optimizer ports.RouteOptimizer
	Trips     ports.TripRepository
	List      *services.LocationListController

	closers []func()
}

// Close releases databases and clients in reverse order of creation.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// NewPlanner builds a fresh planner session bound to the shared adapters.
func (d *Deps) NewPlanner(cfg *config.Config) func() *services.TripPlanner {
	return func() *services.TripPlanner {
		return services.NewTripPlanner(d.List, d.Optimizer, cfg.Optimizer.Timeout)
	}
}

// Build wires the result cache selected by cfg.Cache.Driver and the HTTP
// optimizer for the endpoint resolved from cfg.Mode. Presets live in the SQL
// store when there is one and are otherwise served from the seed file.
func Build(ctx context.Context, cfg *config.Config) (_ *Deps, err error) {
	deps := &Deps{List: services.NewLocationListController(cfg.ListConfig())}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	var resultCache ports.ResultCache

	switch cfg.Cache.Driver {
	case config.CacheSqlite:
		sqlDB, err := openSqlite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() { sqlDB.Close() })
		resultCache = cache.NewSqliteResultCache(sqlDB, cfg.Cache.TTL)
		deps.Trips = repositories.NewSqliteTripRepository(sqlDB)

	case config.CachePostgres:
		pgDB, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() { pgDB.Close() })
		if err := repositories.InitPostgresSchema(ctx, pgDB); err != nil {
			return nil, err
		}
		resultCache = cache.NewSQLResultCache(pgDB, cfg.Cache.TTL)
		deps.Trips = repositories.NewPostgresTripRepository(pgDB)

	case config.CacheValkey:
		vc, err := cache.NewValkeyResultCache(cfg.Valkey.Addr, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, vc.Close)
		resultCache = vc
	}

	if deps.Trips == nil {
		trips, err := SeedPresets(cfg)
		if err != nil {
			return nil, err
		}
		if trips != nil {
			deps.Trips = trips
		}
	}

	opt, err := optimizer.NewHTTPOptimizer(cfg.Endpoint(), resultCache, optimizer.Options{
		MaxAttempts:       cfg.Optimizer.MaxAttempts,
		RatePerSecond:     cfg.Optimizer.RatePerSecond,
		OmitDesignatedEnd: !cfg.Locations.DesignatedEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("build optimizer: %w", err)
	}
	deps.Optimizer = opt

	slog.Info("planner wired",
		"mode", cfg.Mode, "endpoint", cfg.Endpoint(), "cache", cfg.Cache.Driver,
		"max_locations", cfg.Locations.Max)

	return deps, nil
}

// openSqlite opens the local database, creates the schema, and seeds presets
// when the seed file exists.
func openSqlite(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	sqlDB, err := db.OpenSqlite(ctx, cfg.Sqlite.Path)
	if err != nil {
		return nil, err
	}

	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}

	if _, statErr := os.Stat(cfg.SeedPath); errors.Is(statErr, os.ErrNotExist) {
		slog.Info("no trip seed file, skipping", "path", cfg.SeedPath)
		return sqlDB, nil
	}

	if err := repositories.SeedFromJSON(ctx, sqlDB, cfg.SeedPath, cfg.Locations.Max); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}

	return sqlDB, nil
}

// SeedPresets serves presets from the seed file, or returns nil when there is none.
func SeedPresets(cfg *config.Config) (*repositories.MemoryTripRepository, error) {
	if _, err := os.Stat(cfg.SeedPath); errors.Is(err, os.ErrNotExist) {
		slog.Info("no trip seed file, presets disabled", "path", cfg.SeedPath)
		return nil, nil
	}

	trips, err := repositories.NewMemoryTripRepository(cfg.SeedPath, cfg.Locations.Max)
	if err != nil {
		return nil, fmt.Errorf("load trip presets: %w", err)
	}
	return trips, nil
}
