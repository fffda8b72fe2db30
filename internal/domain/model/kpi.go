package model

// KPI identifies the metric a sensor entity displays.
type KPI string

const (
	KPIDistance   KPI = "distance"
	KPIMovingTime KPI = "moving_time"
	KPIPace       KPI = "pace"
	KPISpeed      KPI = "speed"
	KPIElevation  KPI = "elevation"
	KPICalories   KPI = "calories"
	KPIKudos      KPI = "kudos"
	KPIPower      KPI = "power"
	KPILocation   KPI = "location"
	KPITitle      KPI = "title"
	KPIDate       KPI = "date"
)

// AllKPIs lists every selectable KPI in display order.
var AllKPIs = []KPI{
	KPIDistance, KPIMovingTime, KPIPace, KPISpeed, KPIElevation,
	KPICalories, KPIKudos, KPIPower, KPILocation, KPITitle, KPIDate,
}

// Valid returns true for a known KPI.
func (k KPI) Valid() bool {
	for _, known := range AllKPIs {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable KPI name used in friendly names.
func (k KPI) Label() string {
	switch k {
	case KPIDistance:
		return "Distance"
	case KPIMovingTime:
		return "Moving Time"
	case KPIPace:
		return "Pace"
	case KPISpeed:
		return "Speed"
	case KPIElevation:
		return "Elevation Gain"
	case KPICalories:
		return "Calories"
	case KPIKudos:
		return "Kudos"
	case KPIPower:
		return "Average Power"
	case KPILocation:
		return "Location"
	case KPITitle:
		return "Title"
	case KPIDate:
		return "Date"
	default:
		return string(k)
	}
}

// Unit returns the unit of measurement for k under u, or "" for textual KPIs.
func (k KPI) Unit(u UnitSystem) string {
	switch k {
	case KPIDistance:
		return DistanceUnit(u)
	case KPIMovingTime:
		return "min"
	case KPIPace:
		return PaceUnit(u)
	case KPISpeed:
		return SpeedUnit(u)
	case KPIElevation:
		return ElevationUnit(u)
	case KPICalories:
		return "kcal"
	case KPIPower:
		return "W"
	default:
		return ""
	}
}

// DeviceClass returns the host device class for k, or "" when none applies.
func (k KPI) DeviceClass() string {
	switch k {
	case KPIDistance, KPIElevation:
		return "distance"
	case KPIMovingTime:
		return "duration"
	case KPISpeed:
		return "speed"
	case KPIPower:
		return "power"
	case KPIDate:
		return "timestamp"
	default:
		return ""
	}
}

// Numeric reports whether k produces a measurement rather than text.
func (k KPI) Numeric() bool {
	switch k {
	case KPILocation, KPITitle, KPIDate:
		return false
	default:
		return true
	}
}
