package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trip-planner/internal/domain"
	"trip-planner/internal/ports"
)

// tripQueries holds the dialect-specific statements for a trips table.
type tripQueries struct {
	list string
	get  string
}

var (
	sqliteTripQueries = tripQueries{
		list: `SELECT name, locations, designated_end FROM trips ORDER BY name;`,
		get:  `SELECT name, locations, designated_end FROM trips WHERE name = ?;`,
	}
	postgresTripQueries = tripQueries{
		list: `SELECT name, locations::text, designated_end FROM trips ORDER BY name;`,
		get:  `SELECT name, locations::text, designated_end FROM trips WHERE name = $1;`,
	}
)

// SQL-backed implementation of the TripRepository port.
type TripRepository struct {
	DB *sql.DB
	q  tripQueries
}

// NewSqliteTripRepository reads presets from the local sqlite file.
func NewSqliteTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{DB: db, q: sqliteTripQueries}
}

// NewPostgresTripRepository reads presets seeded by dbtool.
func NewPostgresTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{DB: db, q: postgresTripQueries}
}

// Return all presets ordered by name.
func (r *TripRepository) ListTrips(ctx context.Context) ([]*domain.TripPreset, error) {
	if r.DB == nil {
		return nil, errors.New("trip repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	trips := make([]*domain.TripPreset, 0, 16)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: %w", err)
		}
		trips = append(trips, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	return trips, nil
}

// Return one preset by name.
func (r *TripRepository) GetTrip(ctx context.Context, name string) (*domain.TripPreset, error) {
	if r.DB == nil {
		return nil, errors.New("trip repository: DB is nil")
	}

	t, err := scanTrip(r.DB.QueryRowContext(ctx, r.q.get, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trip %q: %w", name, ports.ErrTripNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %q: %w", name, err)
	}

	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.TripPreset, error) {
	var (
		name      string
		locations string
		end       bool
	)
	if err := row.Scan(&name, &locations, &end); err != nil {
		return nil, err
	}

	var locs []string
	if err := json.Unmarshal([]byte(locations), &locs); err != nil {
		return nil, fmt.Errorf("decode locations for %q: %w", name, err)
	}

	return &domain.TripPreset{Name: name, Locations: locs, DesignatedEnd: end}, nil
}
