package optimizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"trip-planner/internal/domain"
)

// MockOptimizer answers from canned results keyed by the joined locations.
// It is used by tests and by the CLI's -dry-run mode.
type MockOptimizer struct {
	mu      sync.Mutex
	results map[string]*domain.OptimizationResult
	calls   int
}

func NewMockOptimizer() *MockOptimizer {
	return &MockOptimizer{results: map[string]*domain.OptimizationResult{}}
}

func mockKey(locations []string) string { return strings.Join(locations, "|") }

// Register stores the answer for an exact list of locations.
func (m *MockOptimizer) Register(locations []string, result *domain.OptimizationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[mockKey(locations)] = result
}

func (m *MockOptimizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockOptimizer) Optimize(ctx context.Context, payload domain.SubmissionPayload) (*domain.OptimizationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if r, ok := m.results[mockKey(payload.Locations)]; ok {
		return r, nil
	}

	// Unregistered lists get the identity route over a uniform matrix.
	n := len(payload.Locations)
	if n == 0 {
		return nil, fmt.Errorf("missing result for %q", payload.Locations)
	}
	route := make([]int, n)
	matrix := make([][]float64, n)
	for i := range n {
		route[i] = i
		matrix[i] = make([]float64, n)
		for j := range n {
			if i != j {
				matrix[i][j] = 600
			}
		}
	}

	legs := n - 1
	if !payload.DesignatedEnd {
		legs = n
	}

	return &domain.OptimizationResult{
		OptimalRoute:   route,
		DistanceMatrix: matrix,
		TotalTime:      float64(legs * 600),
	}, nil
}
