package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"trip-planner/internal/domain"
)

const (
	secondsPerDay  = 86400
	secondsPerHour = 3600

	maxFormatSeconds = float64(math.MaxInt64 / 2)
)

// legSumTolerance is how far the shown legs may drift from total_time before it is logged.
const legSumTolerance = 1.0

// RenderItinerary turns an optimizer answer into ordered, tagged steps.
//
// Without a designated end the route is a closed tour: a final End step
// revisits the start, reached by the leg from the last route index back to
// the first. With a designated end the last route entry is the End step and
// no return leg is added.
func RenderItinerary(
	ctx context.Context,
	result *domain.OptimizationResult,
	payload domain.SubmissionPayload,
) (*domain.Itinerary, error) {
	names := payload.Locations
	if err := result.Validate(len(names), payload.DesignatedEnd); err != nil {
		return nil, fmt.Errorf("render itinerary: %w", err)
	}

	route := result.OptimalRoute
	last := len(route) - 1

	steps := make([]domain.RouteStep, 0, len(route)+1)
	legSum := 0.0

	for i, idx := range route {
		step := domain.RouteStep{
			Kind:          domain.StepWaypoint,
			LocationIndex: idx,
			Location:      names[idx],
		}
		if i == 0 {
			step.Kind = domain.StepStart
		}

		var next int
		switch {
		case i < last:
			next = route[i+1]
		case !payload.DesignatedEnd:
			next = route[0]
		default:
			step.Kind = domain.StepEnd
			steps = append(steps, step)
			continue
		}

		// Validate already proved every leg used here.
		leg, _ := result.Leg(idx, next)
		step.LegSecondsToNext = &leg
		legSum += leg
		steps = append(steps, step)
	}

	if !payload.DesignatedEnd {
		steps = append(steps, domain.RouteStep{
			Kind:          domain.StepEnd,
			LocationIndex: route[0],
			Location:      names[route[0]],
		})
	}

	if math.Abs(legSum-result.TotalTime) > legSumTolerance {
		slog.WarnContext(ctx, "total_time disagrees with leg durations",
			"total_time", result.TotalTime, "leg_sum", legSum, "designated_end", payload.DesignatedEnd)
	}

	return &domain.Itinerary{
		Steps:            steps,
		DesignatedEnd:    payload.DesignatedEnd,
		TotalTimeSeconds: result.TotalTime,
		LegSumSeconds:    legSum,
	}, nil
}

// FormatDuration renders seconds as "<d> days <h> hours <m> minutes", omitting
// days and hours when they are zero and never showing seconds.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	// Keep the int64 conversion in range.
	if seconds > maxFormatSeconds {
		seconds = maxFormatSeconds
	}
	s := int64(math.Round(seconds))

	var b strings.Builder
	if s > secondsPerDay {
		days := s / secondsPerDay
		fmt.Fprintf(&b, "%d days ", days)
		s -= days * secondsPerDay
	}

	if s > secondsPerHour {
		hours := s / secondsPerHour
		fmt.Fprintf(&b, "%d hours ", hours)
		s -= hours * secondsPerHour
	}

	fmt.Fprintf(&b, "%d minutes", s/60)

	return strings.TrimSpace(b.String())
}

// WriteItinerary prints the numbered visiting order with a duration under each
// leg and the total time line.
func WriteItinerary(w io.Writer, it *domain.Itinerary) error {
	if it == nil {
		return nil
	}

	if _, err := fmt.Fprintln(w, "Optimal Route"); err != nil {
		return err
	}

	for i, step := range it.Steps {
		label := step.Location
		switch step.Kind {
		case domain.StepStart:
			label = "Start: " + label
		case domain.StepEnd:
			label = "End: " + label
		}

		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, label); err != nil {
			return err
		}
		if step.LegSecondsToNext != nil {
			if _, err := fmt.Fprintf(w, "   ↓ %s\n", FormatDuration(*step.LegSecondsToNext)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal Time: %s\n", FormatDuration(it.TotalTimeSeconds))
	return err
}
