package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"trip-planner/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		name TEXT PRIMARY KEY,
		locations TEXT NOT NULL,
		designated_end INTEGER NOT NULL DEFAULT 0
	);
	`

	createResultCacheQuery := `
	CREATE TABLE IF NOT EXISTS result_cache (
        cache_key TEXT PRIMARY KEY,
        result TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_result_cache_created_at
    ON result_cache(created_at);
	`

	statements := []string{
		createTripsQuery,
		createResultCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type TripSeed struct {
	Name          string   `json:"name"`
	Locations     []string `json:"locations"`
	DesignatedEnd bool     `json:"designated_end"`
}

// LoadSeeds reads and validates trip presets from a JSON file.
func LoadSeeds(jsonPath string, maxLocations int) ([]domain.TripPreset, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed trips: read %q: %w", jsonPath, err)
	}

	var data []TripSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed trips: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	out := make([]domain.TripPreset, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed trips: item at index %d: name cannot be empty", i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("seed trips: duplicate name %q", name)
		}
		seen[name] = struct{}{}

		locs := make([]string, 0, len(item.Locations))
		for _, l := range item.Locations {
			if l = strings.TrimSpace(l); l != "" {
				locs = append(locs, l)
			}
		}
		if len(locs) < domain.MinLocations {
			return nil, fmt.Errorf("seed trips: %q: %w", name, domain.ErrInsufficientLocations)
		}
		if len(locs) > maxLocations {
			return nil, fmt.Errorf("seed trips: %q has %d locations: %w", name, len(locs), domain.ErrLimitReached)
		}

		out = append(out, domain.TripPreset{Name: name, Locations: locs, DesignatedEnd: item.DesignatedEnd})
	}

	return out, nil
}

// Populate the sqlite trips table from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string, maxLocations int) error {
	trips, err := LoadSeeds(jsonPath, maxLocations)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed trips: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO trips (
		name,
		locations,
		designated_end
	)
	VALUES (?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed trips: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trips {
		locs, err := json.Marshal(t.Locations)
		if err != nil {
			return fmt.Errorf("seed trips: encode %q: %w", t.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, t.Name, string(locs), t.DesignatedEnd); err != nil {
			return fmt.Errorf("seed trips: insert name=%q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed trips: commit tx: %w", err)
	}

	return nil
}
