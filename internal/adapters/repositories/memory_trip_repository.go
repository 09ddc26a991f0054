package repositories

import (
	"context"
	"fmt"
	"sort"

	"trip-planner/internal/domain"
	"trip-planner/internal/ports"
)

// MemoryTripRepository serves presets straight from the seed file when no
// SQL store is configured.
type MemoryTripRepository struct {
	trips map[string]domain.TripPreset
	names []string
}

// NewMemoryTripRepository loads and validates presets from jsonPath.
func NewMemoryTripRepository(jsonPath string, maxLocations int) (*MemoryTripRepository, error) {
	presets, err := LoadSeeds(jsonPath, maxLocations)
	if err != nil {
		return nil, err
	}

	r := &MemoryTripRepository{trips: make(map[string]domain.TripPreset, len(presets))}
	for _, p := range presets {
		r.trips[p.Name] = p
		r.names = append(r.names, p.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Return all presets ordered by name.
func (r *MemoryTripRepository) ListTrips(ctx context.Context) ([]*domain.TripPreset, error) {
	out := make([]*domain.TripPreset, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, clonePreset(r.trips[name]))
	}
	return out, nil
}

// Return one preset by name.
func (r *MemoryTripRepository) GetTrip(ctx context.Context, name string) (*domain.TripPreset, error) {
	p, ok := r.trips[name]
	if !ok {
		return nil, fmt.Errorf("get trip %q: %w", name, ports.ErrTripNotFound)
	}
	return clonePreset(p), nil
}

func clonePreset(p domain.TripPreset) *domain.TripPreset {
	p.Locations = append([]string(nil), p.Locations...)
	return &p
}
