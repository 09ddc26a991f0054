package domain

import "strings"

const (
	// MinLocations is the smallest list the planner ever holds: a start and one more stop.
	MinLocations = 2
	// MaxLocations caps how many entries a list may grow to.
	MaxLocations = 20
	// WarningThreshold is the valid-entry count at which the counter turns to a warning.
	WarningThreshold = 15
)

// Ordered, user-entered place names. Index 0 is always the start point.
// Entries may be empty or padded while the user is still typing.
type LocationList []string

// Clone returns a copy that shares no backing array with l.
func (l LocationList) Clone() LocationList {
	out := make(LocationList, len(l))
	copy(out, l)
	return out
}

// ValidCount reports how many entries are non-empty after trimming.
func (l LocationList) ValidCount() int {
	n := 0
	for _, loc := range l {
		if strings.TrimSpace(loc) != "" {
			n++
		}
	}
	return n
}

// Last returns the final entry, or "" for an empty list.
func (l LocationList) Last() string {
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}

// ListConfig carries the knobs that used to differ between planner variants.
type ListConfig struct {
	MaxLocations          int
	WarningThreshold      int
	SupportsDesignatedEnd bool
}

// DefaultListConfig matches the canonical planner: hard cap of 20, warning at 15,
// designated end point supported.
func DefaultListConfig() ListConfig {
	return ListConfig{
		MaxLocations:          MaxLocations,
		WarningThreshold:      WarningThreshold,
		SupportsDesignatedEnd: true,
	}
}

// CountStatus is the UI feedback level for the number of valid entries.
type CountStatus int

const (
	CountOK CountStatus = iota
	CountWarning
	CountAtLimit
)

func (s CountStatus) String() string {
	switch s {
	case CountOK:
		return "ok"
	case CountWarning:
		return "warning"
	case CountAtLimit:
		return "at-limit"
	default:
		return "unknown"
	}
}

// SubmissionPayload is the validated request derived from a LocationList.
// Locations are trimmed, non-empty, and at least MinLocations long; indices
// in an OptimizationResult refer to this order.
type SubmissionPayload struct {
	Locations     []string
	DesignatedEnd bool
}
