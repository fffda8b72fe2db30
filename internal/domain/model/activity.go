package model

import "time"

// LocationPlaceholder is shown when a start location cannot be resolved.
const LocationPlaceholder = "Unknown Area"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Activity is a read-only snapshot of one Strava activity fetched during a
// poll cycle. Distances are meters, durations seconds.
type Activity struct {
	ID            int64
	Name          string
	Type          ActivityType
	SportType     string
	StartDate     time.Time
	Distance      float64
	MovingTime    int
	ElapsedTime   int
	ElevationGain float64
	Calories      float64
	Kudos         int
	AveragePower  float64
	StartLatLng   *LatLng // nil when the activity has no GPS start point.
	Location      string  // Set by the poller from cache, geocoder or placeholder.
}

// AverageSpeed returns the moving average speed in m/s, or 0 when the
// activity has no moving time.
func (a Activity) AverageSpeed() float64 {
	if a.MovingTime <= 0 {
		return 0
	}
	return a.Distance / float64(a.MovingTime)
}

// Pace returns seconds per meter, or 0 when the activity covered no distance.
func (a Activity) Pace() float64 {
	if a.Distance <= 0 {
		return 0
	}
	return float64(a.MovingTime) / a.Distance
}
