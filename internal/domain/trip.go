package domain

// Represents a named, reusable set of locations.
// Presets only seed a new planner list; the list itself is never written back.
type TripPreset struct {
	Name          string
	Locations     []string
	DesignatedEnd bool
}
