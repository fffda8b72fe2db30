package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampSlots(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {5, 5}, {10, 10}, {11, 10}, {100, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampSlots(tt.in), "ClampSlots(%d)", tt.in)
	}
}

func TestOptions_SensorCount(t *testing.T) {
	for n := -1; n <= 12; n++ {
		opts := Options{SlotCount: n}
		assert.Equal(t, 5*ClampSlots(n)+1, opts.SensorCount())
	}
	assert.Equal(t, 11, Options{SlotCount: 2}.SensorCount())
}

func TestOptions_Normalized(t *testing.T) {
	opts := Options{
		SlotCount:  42,
		UnitSystem: "furlongs",
		KPIs:       [KPIsPerSlot]KPI{KPIKudos, "bogus", KPIPower, "", KPITitle},
	}

	got := opts.Normalized()

	assert.Equal(t, MaxSlots, got.SlotCount)
	assert.Equal(t, UnitSystemMetric, got.UnitSystem)
	assert.Equal(t, [KPIsPerSlot]KPI{KPIKudos, DefaultKPIs[1], KPIPower, DefaultKPIs[3], KPITitle}, got.KPIs)
}

func TestNormalizeActivityType(t *testing.T) {
	tests := map[string]ActivityType{
		"Ride":             ActivityTypeRide,
		"VirtualRide":      ActivityTypeRide,
		"MountainBikeRide": ActivityTypeRide,
		"Run":              ActivityTypeRun,
		"TrailRun":         ActivityTypeRun,
		"Hike":             ActivityTypeHike,
		"Walk":             ActivityTypeHike,
		"Swim":             ActivityTypeOther,
		"":                 ActivityTypeOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeActivityType(in), in)
	}
}

func TestActivity_SpeedAndPace(t *testing.T) {
	a := Activity{Distance: 10000, MovingTime: 3000}
	assert.InDelta(t, 3.3333, a.AverageSpeed(), 1e-4)
	assert.InDelta(t, 0.3, a.Pace(), 1e-9)

	empty := Activity{}
	assert.Zero(t, empty.AverageSpeed())
	assert.Zero(t, empty.Pace())
}
