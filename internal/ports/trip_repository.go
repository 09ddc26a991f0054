package ports

import (
	"context"
	"errors"
	"trip-planner/internal/domain"
)

var ErrTripNotFound = errors.New("trip preset not found")

// Port: a boundary for retrieving trip presets from a data source.
type TripRepository interface {
	// Retrieve all presets ordered by name.
	ListTrips(ctx context.Context) ([]*domain.TripPreset, error)
	// Retrieve one preset; returns ErrTripNotFound when absent.
	GetTrip(ctx context.Context, name string) (*domain.TripPreset, error)
}
