package ports

import (
	"context"
	"trip-planner/internal/domain"
)

// Contract for the remote route-optimization service.
type RouteOptimizer interface {
	// Return the optimal visiting order and travel-time matrix for the payload.
	// Server-side failures surface as *domain.ServerReportedError, everything
	// else that prevented an answer as *domain.TransportError.
	Optimize(ctx context.Context, payload domain.SubmissionPayload) (*domain.OptimizationResult, error)
}
