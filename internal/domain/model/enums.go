package model

// ActivityType is the coarse activity family used to pick icons and
// pace-vs-speed semantics.
type ActivityType string

const (
	ActivityTypeRide  ActivityType = "Ride"
	ActivityTypeRun   ActivityType = "Run"
	ActivityTypeHike  ActivityType = "Hike"
	ActivityTypeOther ActivityType = "Other"
)

// NormalizeActivityType maps a Strava sport type onto an ActivityType family.
func NormalizeActivityType(sportType string) ActivityType {
	switch sportType {
	case "Ride", "VirtualRide", "EBikeRide", "GravelRide", "MountainBikeRide",
		"EMountainBikeRide", "Velomobile", "Handcycle":
		return ActivityTypeRide
	case "Run", "TrailRun", "VirtualRun":
		return ActivityTypeRun
	case "Hike", "Walk":
		return ActivityTypeHike
	default:
		return ActivityTypeOther
	}
}

// Icon returns the Material Design icon for the activity family.
func (t ActivityType) Icon() string {
	switch t {
	case ActivityTypeRide:
		return "mdi:bike"
	case ActivityTypeRun:
		return "mdi:run"
	case ActivityTypeHike:
		return "mdi:hiking"
	default:
		return "mdi:run-fast"
	}
}

// UnitSystem selects how distances, speeds and elevations are displayed.
type UnitSystem string

const (
	UnitSystemMetric   UnitSystem = "metric"
	UnitSystemImperial UnitSystem = "imperial"
)

// Valid returns true for a known unit system.
func (u UnitSystem) Valid() bool {
	return u == UnitSystemMetric || u == UnitSystemImperial
}
