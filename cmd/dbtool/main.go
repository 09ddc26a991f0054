package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"trip-planner/internal/adapters/repositories"
	"trip-planner/internal/config"
	"trip-planner/internal/domain"
	"trip-planner/internal/platform/db"
	"trip-planner/internal/platform/logging"
)

func main() {
	logging.Setup(config.Get("TRIP_PLANNER_LOG_LEVEL", "info"), "text")

	if err := run(context.Background()); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("TRIP_PLANNER_DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("TRIP_PLANNER_DATABASE_URL is required")
	}

	maxLocations, err := strconv.Atoi(config.Get("TRIP_PLANNER_LOCATIONS_MAX", strconv.Itoa(domain.MaxLocations)))
	if err != nil {
		return fmt.Errorf("TRIP_PLANNER_LOCATIONS_MAX must be an integer: %w", err)
	}

	pg, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	seedPath := config.Get("TRIP_PLANNER_SEED_PATH", "data/seeds/trips.json")
	return initAndSeed(ctx, pg, seedPath, maxLocations)
}

func initAndSeed(ctx context.Context, db *sql.DB, seedPath string, maxLocations int) error {
	slog.Info("Initializing database schema...")
	if err := repositories.InitPostgresSchema(ctx, db); err != nil {
		return err
	}
	slog.Info("Schema ready.")

	slog.Info("Seeding database...", "path", seedPath)
	if err := repositories.SeedPostgresFromJSON(ctx, db, seedPath, maxLocations); err != nil {
		return err
	}
	slog.Info("Seeding complete.")

	return nil
}
