package model

// Conversion factors. All conversions are linear, so every To/From pair is an
// exact inverse up to floating point error.
const (
	metersPerKilometer = 1000.0
	metersPerMile      = 1609.344
	metersPerFoot      = 0.3048
	secondsPerHour     = 3600.0
	secondsPerMinute   = 60.0
)

// longUnit returns meters per display distance unit.
func longUnit(u UnitSystem) float64 {
	if u == UnitSystemImperial {
		return metersPerMile
	}
	return metersPerKilometer
}

// DistanceFromMeters converts meters to kilometers or miles.
func DistanceFromMeters(m float64, u UnitSystem) float64 {
	return m / longUnit(u)
}

// DistanceToMeters is the inverse of DistanceFromMeters.
func DistanceToMeters(v float64, u UnitSystem) float64 {
	return v * longUnit(u)
}

// ElevationFromMeters converts meters to meters or feet.
func ElevationFromMeters(m float64, u UnitSystem) float64 {
	if u == UnitSystemImperial {
		return m / metersPerFoot
	}
	return m
}

// ElevationToMeters is the inverse of ElevationFromMeters.
func ElevationToMeters(v float64, u UnitSystem) float64 {
	if u == UnitSystemImperial {
		return v * metersPerFoot
	}
	return v
}

// SpeedFromMPS converts m/s to km/h or mph.
func SpeedFromMPS(mps float64, u UnitSystem) float64 {
	return mps * secondsPerHour / longUnit(u)
}

// SpeedToMPS is the inverse of SpeedFromMPS.
func SpeedToMPS(v float64, u UnitSystem) float64 {
	return v * longUnit(u) / secondsPerHour
}

// PaceFromSecondsPerMeter converts s/m to minutes per kilometer or mile.
func PaceFromSecondsPerMeter(spm float64, u UnitSystem) float64 {
	return spm * longUnit(u) / secondsPerMinute
}

// PaceToSecondsPerMeter is the inverse of PaceFromSecondsPerMeter.
func PaceToSecondsPerMeter(v float64, u UnitSystem) float64 {
	return v * secondsPerMinute / longUnit(u)
}

// DistanceUnit returns the display unit for distances.
func DistanceUnit(u UnitSystem) string {
	if u == UnitSystemImperial {
		return "mi"
	}
	return "km"
}

// ElevationUnit returns the display unit for elevation gain.
func ElevationUnit(u UnitSystem) string {
	if u == UnitSystemImperial {
		return "ft"
	}
	return "m"
}

// SpeedUnit returns the display unit for speeds.
func SpeedUnit(u UnitSystem) string {
	if u == UnitSystemImperial {
		return "mph"
	}
	return "km/h"
}

// PaceUnit returns the display unit for paces.
func PaceUnit(u UnitSystem) string {
	if u == UnitSystemImperial {
		return "min/mi"
	}
	return "min/km"
}
