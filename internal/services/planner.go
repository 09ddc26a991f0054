package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trip-planner/internal/domain"
	"trip-planner/internal/ports"
)

// PlannerState is the position in the Editing → Submitting → Editing cycle.
type PlannerState int

const (
	StateEditing PlannerState = iota
	StateSubmitting
)

func (s PlannerState) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "editing"
}

// TripPlanner is one user's planner form: the location list, the
// designated-end toggle, the in-flight flag, and the last rendered result.
//
// Editing stays possible while a submission runs. A failed submission leaves
// the previous itinerary in place and records the error.
type TripPlanner struct {
	list    *LocationListController
	builder *SubmissionBuilder

	mu            sync.Mutex
	locations     domain.LocationList
	designatedEnd bool
	itinerary     *domain.Itinerary
	lastErr       error
}

func NewTripPlanner(list *LocationListController, optimizer ports.RouteOptimizer, timeout time.Duration) *TripPlanner {
	return &TripPlanner{
		list:      list,
		builder:   NewSubmissionBuilder(optimizer, list.Config(), timeout),
		locations: list.Initialize(),
	}
}

// PlannerView is a consistent copy of everything the form displays.
type PlannerView struct {
	Locations             []string
	Placeholders          []string
	ValidCount            int
	CountStatus           domain.CountStatus
	MaxLocations          int
	CanAdd                bool
	CanRemove             bool
	DesignatedEnd         bool
	SupportsDesignatedEnd bool
	EndPointPreview       string
	Loading               bool
	State                 PlannerState
	Tips                  []string
	Itinerary             *domain.Itinerary
	Error                 string
}

func (p *TripPlanner) View() PlannerView {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := p.list.Config()
	loading := p.builder.Loading()
	state := StateEditing
	if loading {
		state = StateSubmitting
	}

	placeholders := make([]string, len(p.locations))
	for i := range p.locations {
		placeholders[i] = Placeholder(i, len(p.locations), p.designatedEnd)
	}

	return PlannerView{
		Locations:             p.locations.Clone(),
		Placeholders:          placeholders,
		ValidCount:            p.list.ValidCount(p.locations),
		CountStatus:           p.list.CountStatus(p.locations),
		MaxLocations:          cfg.MaxLocations,
		CanAdd:                p.list.CanAdd(p.locations),
		CanRemove:             p.list.CanRemove(p.locations),
		DesignatedEnd:         p.designatedEnd,
		SupportsDesignatedEnd: cfg.SupportsDesignatedEnd,
		EndPointPreview:       p.endPointPreviewLocked(),
		Loading:               loading,
		State:                 state,
		Tips:                  Tips(p.designatedEnd, cfg.MaxLocations),
		Itinerary:             p.itinerary,
		Error:                 domain.UserMessage(p.lastErr),
	}
}

func (p *TripPlanner) Locations() domain.LocationList {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locations.Clone()
}

func (p *TripPlanner) SetLocation(index int, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations = p.list.SetAt(p.locations, index, value)
}

func (p *TripPlanner) AddLocation() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	locs, err := p.list.Add(p.locations)
	p.locations = locs
	if err != nil {
		p.lastErr = err
		return err
	}
	p.clearLimitErrLocked()
	return nil
}

func (p *TripPlanner) RemoveLocation(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations = p.list.Remove(p.locations, index)
	p.clearLimitErrLocked()
}

func (p *TripPlanner) clearLimitErrLocked() {
	if errors.Is(p.lastErr, domain.ErrLimitReached) {
		p.lastErr = nil
	}
}

// SetDesignatedEnd toggles open-path mode. It is ignored, returning false,
// when the configuration does not support a designated end point.
func (p *TripPlanner) SetDesignatedEnd(enabled bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if enabled && !p.list.Config().SupportsDesignatedEnd {
		return false
	}
	p.designatedEnd = enabled
	return true
}

// LoadPreset replaces the list with a preset's locations, padded to the minimum.
func (p *TripPlanner) LoadPreset(preset *domain.TripPreset) error {
	if preset == nil {
		return fmt.Errorf("load preset: preset is nil")
	}

	cfg := p.list.Config()
	if len(preset.Locations) > cfg.MaxLocations {
		return fmt.Errorf("load preset %q: %d locations, max %d: %w",
			preset.Name, len(preset.Locations), cfg.MaxLocations, domain.ErrLimitReached)
	}

	locs := make(domain.LocationList, 0, max(len(preset.Locations), domain.MinLocations))
	locs = append(locs, preset.Locations...)
	for len(locs) < domain.MinLocations {
		locs = append(locs, "")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations = locs
	p.designatedEnd = preset.DesignatedEnd && cfg.SupportsDesignatedEnd
	return nil
}

// Submit sends the current list and, on success, replaces the itinerary.
// The lock is not held across the network call.
func (p *TripPlanner) Submit(ctx context.Context) (*domain.Itinerary, error) {
	// Rejections of a second submit are returned but not recorded, so they
	// cannot overwrite the outcome of the request that is still running.
	if p.builder.Loading() {
		return nil, fmt.Errorf("submit trip: %w", domain.ErrSubmissionInFlight)
	}

	p.mu.Lock()
	payload, err := p.builder.BuildPayload(p.locations, p.designatedEnd)
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		return nil, err
	}
	p.mu.Unlock()

	result, err := p.builder.Submit(ctx, payload)
	if errors.Is(err, domain.ErrSubmissionInFlight) {
		return nil, err
	}
	if err != nil {
		return nil, p.fail(err)
	}

	it, err := RenderItinerary(ctx, result, payload)
	if err != nil {
		return nil, p.fail(err)
	}

	p.mu.Lock()
	p.itinerary = it
	p.lastErr = nil
	p.mu.Unlock()

	return it, nil
}

func (p *TripPlanner) fail(err error) error {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	return err
}

func (p *TripPlanner) endPointPreviewLocked() string {
	if !p.designatedEnd || len(p.locations) < domain.MinLocations {
		return ""
	}
	if last := strings.TrimSpace(p.locations.Last()); last != "" {
		return last
	}
	return "empty"
}

// Placeholder is the hint text for the input at index.
func Placeholder(index, length int, designatedEnd bool) string {
	switch {
	case index == 0:
		return "Enter starting location"
	case designatedEnd && index == length-1:
		return "Enter ending location"
	default:
		return fmt.Sprintf("Location %d", index+1)
	}
}

// Tips are the hints listed under the form.
func Tips(designatedEnd bool, maxLocations int) []string {
	first := "Unless you enable a designated end point, the first location is both the starting and " +
		"ending point, and we'll calculate the optimal full loop."
	if designatedEnd {
		first = "The first location is the starting point, the last location is the ending point. " +
			"We'll find the optimal path between them."
	}

	return []string{
		first,
		"The order that you place all the other locations doesn't matter.",
		fmt.Sprintf("Minimum %d locations required", domain.MinLocations),
		fmt.Sprintf("Maximum %d locations allowed", maxLocations),
	}
}
