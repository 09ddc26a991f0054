package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trip-planner/internal/domain"
	"trip-planner/internal/platform/metrics"
	"trip-planner/internal/platform/obs"
	"trip-planner/internal/ports"
)

// SubmissionBuilder turns a LocationList into a payload and sends it to the
// optimizer, allowing at most one outstanding request at a time.
type SubmissionBuilder struct {
	optimizer ports.RouteOptimizer
	cfg       domain.ListConfig
	timeout   time.Duration

	mu      sync.Mutex
	loading bool
}

// NewSubmissionBuilder binds an optimizer. A zero timeout disables the deadline.
func NewSubmissionBuilder(optimizer ports.RouteOptimizer, cfg domain.ListConfig, timeout time.Duration) *SubmissionBuilder {
	return &SubmissionBuilder{
		optimizer: optimizer,
		cfg:       cfg,
		timeout:   timeout,
	}
}

// BuildPayload trims every entry and drops the blank ones, keeping relative
// order. Result indices refer to this filtered order.
func (b *SubmissionBuilder) BuildPayload(list domain.LocationList, designatedEnd bool) (domain.SubmissionPayload, error) {
	clean := make([]string, 0, len(list))
	for _, loc := range list {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		clean = append(clean, loc)
	}

	if len(clean) < domain.MinLocations {
		return domain.SubmissionPayload{}, fmt.Errorf("build payload: %d valid: %w", len(clean), domain.ErrInsufficientLocations)
	}

	return domain.SubmissionPayload{
		Locations:     clean,
		DesignatedEnd: designatedEnd && b.cfg.SupportsDesignatedEnd,
	}, nil
}

// Loading reports whether a submission is outstanding.
func (b *SubmissionBuilder) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Submit sends payload and validates the answer against it. The loading flag
// is set for the duration of the call and cleared on every exit path.
// A concurrent call fails fast with domain.ErrSubmissionInFlight.
func (b *SubmissionBuilder) Submit(ctx context.Context, payload domain.SubmissionPayload) (_ *domain.OptimizationResult, err error) {
	if len(payload.Locations) < domain.MinLocations {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInsufficient).Inc()
		return nil, fmt.Errorf("submit: %w", domain.ErrInsufficientLocations)
	}

	if !b.begin() {
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeInFlight).Inc()
		return nil, fmt.Errorf("submit: %w", domain.ErrSubmissionInFlight)
	}
	defer b.end()

	defer obs.Time(ctx, "planner.Submit")(&err)

	start := time.Now()
	defer func() {
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
		metrics.SubmissionsTotal.WithLabelValues(outcomeOf(err)).Inc()
	}()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.optimizer.Optimize(ctx, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("submit: %w: %w", domain.ErrRequestTimedOut, err)
		}
		return nil, fmt.Errorf("submit: %w", err)
	}

	if err := result.Validate(len(payload.Locations), payload.DesignatedEnd); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	return result, nil
}

func (b *SubmissionBuilder) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loading {
		return false
	}
	b.loading = true
	return true
}

func (b *SubmissionBuilder) end() {
	b.mu.Lock()
	b.loading = false
	b.mu.Unlock()
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}

	var se *domain.ServerReportedError
	switch {
	case errors.Is(err, domain.ErrRequestTimedOut):
		return metrics.OutcomeTimeout
	case errors.Is(err, domain.ErrMalformedResult):
		return metrics.OutcomeMalformed
	case errors.As(err, &se):
		return metrics.OutcomeServerError
	default:
		return metrics.OutcomeTransport
	}
}
