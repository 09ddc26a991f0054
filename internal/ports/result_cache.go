package ports

import (
	"context"
	"trip-planner/internal/domain"
)

// Persistent cache of optimization results keyed by a normalized payload.
type ResultCache interface {
	// Return the cached result and true, or nil and false on a miss.
	Get(ctx context.Context, key string) (*domain.OptimizationResult, bool, error)
	// Store a result under key, replacing any previous entry.
	Put(ctx context.Context, key string, result *domain.OptimizationResult) error
}
