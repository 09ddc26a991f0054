package domain

// StepKind tags a step's position in an itinerary.
type StepKind int

const (
	StepStart StepKind = iota
	StepWaypoint
	StepEnd
)

func (k StepKind) String() string {
	switch k {
	case StepStart:
		return "start"
	case StepWaypoint:
		return "waypoint"
	case StepEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Represents a single stop in a rendered itinerary.
// LegSecondsToNext is nil on the final step only.
type RouteStep struct {
	Kind             StepKind
	LocationIndex    int
	Location         string
	LegSecondsToNext *float64
}

// Represents the human-readable visiting order produced from an OptimizationResult.
// In loop mode the last step revisits the start location; in open mode the last
// step is the designated end point. TotalTimeSeconds is the optimizer's figure;
// LegSumSeconds is the sum of the legs actually shown.
type Itinerary struct {
	Steps            []RouteStep
	DesignatedEnd    bool
	TotalTimeSeconds float64
	LegSumSeconds    float64
}
