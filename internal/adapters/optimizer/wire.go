package optimizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"trip-planner/internal/domain"
)

type optimizeRequest struct {
	Locations     []string `json:"locations"`
	DesignatedEnd *bool    `json:"designated_end,omitempty"`
}

// optimizeResponse is either {"error": "..."} or a full result. Pointers let
// missing fields be told apart from zero values.
type optimizeResponse struct {
	Error          *string      `json:"error"`
	OptimalRoute   []int        `json:"optimal_route"`
	DistanceMatrix [][]*float64 `json:"distance_matrix"`
	TotalTime      *float64     `json:"total_time"`
}

type errorBody struct {
	Error string `json:"error"`
}

func newOptimizeRequest(p domain.SubmissionPayload, sendDesignatedEnd bool) optimizeRequest {
	req := optimizeRequest{Locations: p.Locations}
	if sendDesignatedEnd {
		flag := p.DesignatedEnd
		req.DesignatedEnd = &flag
	}
	return req
}

// serverMessage extracts a non-empty "error" field from a response body.
func serverMessage(body []byte) (string, bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", false
	}
	msg := strings.TrimSpace(eb.Error)
	return msg, msg != ""
}

// toResult converts the wire shape; null matrix cells become NaN so
// Validate can reject them if a route leg needs them.
func (r *optimizeResponse) toResult() (*domain.OptimizationResult, error) {
	if r.OptimalRoute == nil || r.DistanceMatrix == nil || r.TotalTime == nil {
		return nil, fmt.Errorf(
			"%w: missing fields optimal_route=%t distance_matrix=%t total_time=%t",
			domain.ErrMalformedResult, r.OptimalRoute != nil, r.DistanceMatrix != nil, r.TotalTime != nil,
		)
	}

	matrix := make([][]float64, len(r.DistanceMatrix))
	for i, row := range r.DistanceMatrix {
		matrix[i] = make([]float64, len(row))
		for j, cell := range row {
			if cell == nil {
				matrix[i][j] = math.NaN()
				continue
			}
			matrix[i][j] = *cell
		}
	}

	route := make([]int, len(r.OptimalRoute))
	copy(route, r.OptimalRoute)

	return &domain.OptimizationResult{
		OptimalRoute:   route,
		DistanceMatrix: matrix,
		TotalTime:      *r.TotalTime,
	}, nil
}
