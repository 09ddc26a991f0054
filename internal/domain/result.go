package domain

import (
	"fmt"
	"math"
)

// MaxDurationSeconds bounds any leg or route total the planner will display.
const MaxDurationSeconds = 365 * 24 * 60 * 60

// OptimizationResult is the optimizer's answer for one SubmissionPayload.
//
// OptimalRoute is a permutation of indices into the submitted locations.
// DistanceMatrix holds travel seconds between those indices; cells the
// optimizer left empty are NaN. TotalTime is the route total as returned.
// A result is replaced wholesale by the next successful submission.
type OptimizationResult struct {
	OptimalRoute   []int
	DistanceMatrix [][]float64
	TotalTime      float64
}

// Validate checks the result against the payload it answers so that rendering
// never indexes out of range. Every leg the itinerary will show, including the
// closing leg of a loop, must be present and non-negative.
func (r *OptimizationResult) Validate(count int, designatedEnd bool) error {
	if r == nil {
		return fmt.Errorf("%w: result is nil", ErrMalformedResult)
	}

	if count < MinLocations {
		return fmt.Errorf("%w: %d submitted locations", ErrMalformedResult, count)
	}

	if len(r.OptimalRoute) != count {
		return fmt.Errorf(
			"%w: optimal_route has %d entries, submitted %d locations",
			ErrMalformedResult, len(r.OptimalRoute), count,
		)
	}

	seen := make([]bool, count)
	for i, idx := range r.OptimalRoute {
		if idx < 0 || idx >= count {
			return fmt.Errorf("%w: optimal_route[%d]=%d out of range", ErrMalformedResult, i, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: optimal_route repeats index %d", ErrMalformedResult, idx)
		}
		seen[idx] = true
	}

	for i := 0; i < len(r.OptimalRoute)-1; i++ {
		if _, err := r.Leg(r.OptimalRoute[i], r.OptimalRoute[i+1]); err != nil {
			return err
		}
	}

	if !designatedEnd {
		last := r.OptimalRoute[len(r.OptimalRoute)-1]
		if _, err := r.Leg(last, r.OptimalRoute[0]); err != nil {
			return err
		}
	}

	if math.IsNaN(r.TotalTime) || math.IsInf(r.TotalTime, 0) || r.TotalTime < 0 || r.TotalTime > MaxDurationSeconds {
		return fmt.Errorf("%w: total_time %v", ErrMalformedResult, r.TotalTime)
	}

	return nil
}

// Leg returns the travel seconds from one index to another.
func (r *OptimizationResult) Leg(from, to int) (float64, error) {
	if from < 0 || from >= len(r.DistanceMatrix) {
		return 0, fmt.Errorf("%w: distance_matrix has no row %d", ErrMalformedResult, from)
	}

	row := r.DistanceMatrix[from]
	if to < 0 || to >= len(row) {
		return 0, fmt.Errorf("%w: distance_matrix[%d] has no column %d", ErrMalformedResult, from, to)
	}

	v := row[to]
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxDurationSeconds {
		return 0, fmt.Errorf("%w: distance_matrix[%d][%d]=%v", ErrMalformedResult, from, to, v)
	}

	return v, nil
}
