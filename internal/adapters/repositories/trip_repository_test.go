package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/domain"
	"trip-planner/internal/platform/db"
	"trip-planner/internal/ports"
)

const seedJSON = `[
	{"name": "loop", "locations": ["Paris", " Lyon ", "", "Nice"]},
	{"name": "commute", "locations": ["Home", "Gym", "Work"], "designated_end": true}
]`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trips.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func seededDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	sqlDB, err := db.OpenSqlite(ctx, filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, InitSchema(ctx, sqlDB))
	require.NoError(t, SeedFromJSON(ctx, sqlDB, writeSeed(t, seedJSON), domain.MaxLocations))
	return sqlDB
}

func TestTripRepositoryListTrips(t *testing.T) {
	repo := NewSqliteTripRepository(seededDB(t))

	trips, err := repo.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 2)

	assert.Equal(t, "commute", trips[0].Name)
	assert.True(t, trips[0].DesignatedEnd)
	assert.Equal(t, "loop", trips[1].Name)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice"}, trips[1].Locations)
}

func TestTripRepositoryGetTrip(t *testing.T) {
	repo := NewSqliteTripRepository(seededDB(t))

	trip, err := repo.GetTrip(context.Background(), "commute")
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "Gym", "Work"}, trip.Locations)

	_, err = repo.GetTrip(context.Background(), "missing")
	assert.True(t, errors.Is(err, ports.ErrTripNotFound))
}

func TestSeedFromJSONIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sqlDB := seededDB(t)

	require.NoError(t, SeedFromJSON(ctx, sqlDB, writeSeed(t, seedJSON), domain.MaxLocations))

	trips, err := NewSqliteTripRepository(sqlDB).ListTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 2)
}

func TestLoadSeedsValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		max     int
		wantErr error
	}{
		{"too few locations", `[{"name": "a", "locations": ["Paris", " "]}]`, 20, domain.ErrInsufficientLocations},
		{"over the cap", `[{"name": "a", "locations": ["A", "B", "C"]}]`, 2, domain.ErrLimitReached},
		{"duplicate name", `[{"name": "a", "locations": ["A", "B"]}, {"name": "a", "locations": ["A", "B"]}]`, 20, nil},
		{"empty name", `[{"name": " ", "locations": ["A", "B"]}]`, 20, nil},
		{"bad json", `{`, 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeeds(writeSeed(t, tt.body), tt.max)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMemoryTripRepository(t *testing.T) {
	repo, err := NewMemoryTripRepository(writeSeed(t, seedJSON), domain.MaxLocations)
	require.NoError(t, err)

	trips, err := repo.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "commute", trips[0].Name)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice"}, trips[1].Locations)

	trip, err := repo.GetTrip(context.Background(), "commute")
	require.NoError(t, err)
	assert.True(t, trip.DesignatedEnd)

	trip.Locations[0] = "Elsewhere"
	again, err := repo.GetTrip(context.Background(), "commute")
	require.NoError(t, err)
	assert.Equal(t, "Home", again.Locations[0])

	_, err = repo.GetTrip(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrTripNotFound)
}
