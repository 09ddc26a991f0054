package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Initialize the postgres schema used by the shared result cache and presets.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			name TEXT PRIMARY KEY,
			locations JSONB NOT NULL,
			designated_end BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE TABLE IF NOT EXISTS result_cache (
			cache_key TEXT PRIMARY KEY,
			result TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_result_cache_created_at
		ON result_cache(created_at);`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}

// Populate the postgres trips table from a JSON file.
func SeedPostgresFromJSON(ctx context.Context, db *sql.DB, jsonPath string, maxLocations int) error {
	trips, err := LoadSeeds(jsonPath, maxLocations)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed trips: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO trips (name, locations, designated_end)
	VALUES ($1, $2, $3)
	ON CONFLICT (name) DO UPDATE
	SET locations = EXCLUDED.locations,
		designated_end = EXCLUDED.designated_end;
	`)
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
