package services

import (
	"context"
	"sync"

	"trip-planner/internal/domain"
)

// fakeOptimizer returns a fixed answer, or blocks until release is closed.
type fakeOptimizer struct {
	mu       sync.Mutex
	result   *domain.OptimizationResult
	err      error
	payloads []domain.SubmissionPayload

	started chan struct{}
	release chan struct{}
}

func (f *fakeOptimizer) Optimize(ctx context.Context, payload domain.SubmissionPayload) (*domain.OptimizationResult, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return f.result, f.err
}

func (f *fakeOptimizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// threeStopResult answers A, B, C with route [0, 2, 1].
func threeStopResult() *domain.OptimizationResult {
	return &domain.OptimizationResult{
		OptimalRoute: []int{0, 2, 1},
		DistanceMatrix: [][]float64{
			{0, 600, 1200},
			{660, 0, 1800},
			{1260, 1860, 0},
		},
		TotalTime: 3720,
	}
}
