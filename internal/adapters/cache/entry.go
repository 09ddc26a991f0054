package cache

import (
	"encoding/json"
	"fmt"
	"math"

	"trip-planner/internal/domain"
)

// entry is the stored form of a result. NaN cells are kept as null since
// encoding/json rejects NaN.
type entry struct {
	OptimalRoute   []int        `json:"optimal_route"`
	DistanceMatrix [][]*float64 `json:"distance_matrix"`
	TotalTime      float64      `json:"total_time"`
}

func encodeResult(r *domain.OptimizationResult) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("encode result: result is nil")
	}

	e := entry{
		OptimalRoute:   r.OptimalRoute,
		DistanceMatrix: make([][]*float64, len(r.DistanceMatrix)),
		TotalTime:      r.TotalTime,
	}
	for i, row := range r.DistanceMatrix {
		e.DistanceMatrix[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			e.DistanceMatrix[i][j] = &v
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return b, nil
}

func decodeResult(b []byte) (*domain.OptimizationResult, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	matrix := make([][]float64, len(e.DistanceMatrix))
	for i, row := range e.DistanceMatrix {
		matrix[i] = make([]float64, len(row))
		for j, cell := range row {
			if cell == nil {
				matrix[i][j] = math.NaN()
				continue
			}
			matrix[i][j] = *cell
		}
	}

	return &domain.OptimizationResult{
		OptimalRoute:   e.OptimalRoute,
		DistanceMatrix: matrix,
		TotalTime:      e.TotalTime,
	}, nil
}
