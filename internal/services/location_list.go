package services

import (
	"fmt"
	"trip-planner/internal/domain"
)

// LocationListController owns the rules for mutating a LocationList.
//
// Every operation returns a new list and leaves its input untouched, so the
// caller can swap state atomically. The list never drops below
// domain.MinLocations entries nor grows past cfg.MaxLocations.
type LocationListController struct {
	cfg domain.ListConfig
}

func NewLocationListController(cfg domain.ListConfig) *LocationListController {
	if cfg.MaxLocations < domain.MinLocations {
		cfg.MaxLocations = domain.MinLocations
	}
	return &LocationListController{cfg: cfg}
}

func (c *LocationListController) Config() domain.ListConfig { return c.cfg }

// Initialize returns a list with two empty slots: start and one more stop.
func (c *LocationListController) Initialize() domain.LocationList {
	return make(domain.LocationList, domain.MinLocations)
}

// SetAt replaces the entry at index. Out-of-range indices are a no-op.
func (c *LocationListController) SetAt(list domain.LocationList, index int, value string) domain.LocationList {
	out := list.Clone()
	if index < 0 || index >= len(out) {
		return out
	}
	out[index] = value
	return out
}

// Add appends an empty slot, or returns the list unchanged with
// domain.ErrLimitReached when it is already at the cap.
func (c *LocationListController) Add(list domain.LocationList) (domain.LocationList, error) {
	if len(list) >= c.cfg.MaxLocations {
		return list.Clone(), fmt.Errorf("add location: %d of %d: %w", len(list), c.cfg.MaxLocations, domain.ErrLimitReached)
	}
	return append(list.Clone(), ""), nil
}

// Remove deletes the entry at index while more than the minimum remain.
// Out-of-range indices and lists at the minimum are a no-op.
func (c *LocationListController) Remove(list domain.LocationList, index int) domain.LocationList {
	if len(list) <= domain.MinLocations || index < 0 || index >= len(list) {
		return list.Clone()
	}

	out := make(domain.LocationList, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return out
}

// ValidCount is the number of non-blank entries.
func (c *LocationListController) ValidCount(list domain.LocationList) int {
	return list.ValidCount()
}

// CountStatus grades ValidCount for the counter shown above the form.
func (c *LocationListController) CountStatus(list domain.LocationList) domain.CountStatus {
	n := list.ValidCount()
	switch {
	case n >= c.cfg.MaxLocations:
		return domain.CountAtLimit
	case n >= c.cfg.WarningThreshold:
		return domain.CountWarning
	default:
		return domain.CountOK
	}
}

// CanAdd reports whether Add would succeed; used to disable the add control.
func (c *LocationListController) CanAdd(list domain.LocationList) bool {
	return len(list) < c.cfg.MaxLocations
}

// CanRemove reports whether remove controls should be shown at all.
func (c *LocationListController) CanRemove(list domain.LocationList) bool {
	return len(list) > domain.MinLocations
}
