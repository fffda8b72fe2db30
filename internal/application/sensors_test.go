package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hastrava/internal/application"
	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

func TestBuildSensors_Count(t *testing.T) {
	activities := []model.Activity{ride(1, nil), ride(2, nil), ride(3, nil)}

	for n := -1; n <= 12; n++ {
		states := application.BuildSensors(activities, optsWithSlots(n), fixedNow)
		assert.Len(t, states, 5*model.ClampSlots(n)+1, "slot count %d", n)
	}
}

func TestBuildSensors_OrderAndIDs(t *testing.T) {
	states := application.BuildSensors(nil, optsWithSlots(2), fixedNow)
	require.Len(t, states, 11)

	want := []string{
		"sensor.strava_0_1", "sensor.strava_0_2", "sensor.strava_0_3", "sensor.strava_0_4", "sensor.strava_0_5",
		"sensor.strava_1_1", "sensor.strava_1_2", "sensor.strava_1_3", "sensor.strava_1_4", "sensor.strava_1_5",
		"sensor.strava_summary",
	}
	got := make([]string, 0, len(states))
	for _, st := range states {
		got = append(got, st.EntityID)
	}
	assert.Equal(t, want, got)
}

func TestBuildSensors_EmptySlotsAreUnknown(t *testing.T) {
	states := application.BuildSensors([]model.Activity{ride(1, nil)}, optsWithSlots(2), fixedNow)

	for _, st := range states[model.KPIsPerSlot : 2*model.KPIsPerSlot] {
		assert.Equal(t, model.StateUnknown, st.State, st.EntityID)
		assert.NotContains(t, st.Attributes, "activity_id")
	}
	assert.Equal(t, "1", states[len(states)-1].State)
}

func TestBuildSensors_DefaultKPIValues(t *testing.T) {
	a := model.Activity{
		ID:            7,
		Name:          "Lunch Run",
		Type:          model.ActivityTypeRun,
		SportType:     "TrailRun",
		StartDate:     time.Date(2026, 2, 28, 11, 30, 0, 0, time.UTC),
		Distance:      10000,
		MovingTime:    3000,
		ElevationGain: 123.6,
		Location:      "Bern",
	}

	states := application.BuildSensors([]model.Activity{a}, optsWithSlots(1), fixedNow)
	require.Len(t, states, 6)

	assert.Equal(t, "10.00", states[0].State, "distance km")
	assert.Equal(t, "50.0", states[1].State, "moving time min")
	assert.Equal(t, "12.0", states[2].State, "speed km/h")
	assert.Equal(t, "124", states[3].State, "elevation m")
	assert.Equal(t, "Bern", states[4].State, "location")

	attrs := states[0].Attributes
	assert.Equal(t, "mdi:run", attrs["icon"])
	assert.Equal(t, "km", attrs["unit_of_measurement"])
	assert.Equal(t, "distance", attrs["device_class"])
	assert.Equal(t, "measurement", attrs["state_class"])
	assert.Equal(t, int64(7), attrs["activity_id"])
	assert.Equal(t, "Lunch Run", attrs["title"])
	assert.Equal(t, "TrailRun", attrs["sport_type"])
	assert.Equal(t, "2026-02-28T11:30:00Z", attrs["start_date"])
	assert.Equal(t, "Bern", attrs["location"])
	assert.Equal(t, "Strava 0 Distance", attrs["friendly_name"])

	assert.NotContains(t, states[4].Attributes, "unit_of_measurement")
	assert.NotContains(t, states[4].Attributes, "state_class")
}

func TestBuildSensors_Imperial(t *testing.T) {
	a := model.Activity{ID: 1, Type: model.ActivityTypeRide, Distance: 16093.44, MovingTime: 1800, ElevationGain: 304.8}
	opts := optsWithSlots(1)
	opts.UnitSystem = model.UnitSystemImperial

	states := application.BuildSensors([]model.Activity{a}, opts, fixedNow)

	assert.Equal(t, "10.00", states[0].State)
	assert.Equal(t, "mi", states[0].Attributes["unit_of_measurement"])
	assert.Equal(t, "20.0", states[2].State, "10 mi in 30 min is 20 mph")
	assert.Equal(t, "mph", states[2].Attributes["unit_of_measurement"])
	assert.Equal(t, "1000", states[3].State)
	assert.Equal(t, "ft", states[3].Attributes["unit_of_measurement"])
}

func TestBuildSensors_CustomKPIs(t *testing.T) {
	a := model.Activity{
		ID:           1,
		Name:         "Intervals",
		Type:         model.ActivityTypeRide,
		StartDate:    time.Date(2026, 2, 28, 6, 0, 0, 0, time.UTC),
		Distance:     1000,
		MovingTime:   300,
		Calories:     512.4,
		Kudos:        3,
		AveragePower: 245.6,
	}
	opts := optsWithSlots(1)
	opts.KPIs = [model.KPIsPerSlot]model.KPI{model.KPIPace, model.KPICalories, model.KPIKudos, model.KPIPower, model.KPIDate}

	states := application.BuildSensors([]model.Activity{a}, opts, fixedNow)

	assert.Equal(t, "5.00", states[0].State, "5 min/km")
	assert.Equal(t, "512", states[1].State)
	assert.Equal(t, "3", states[2].State)
	assert.Equal(t, "246", states[3].State)
	assert.Equal(t, "2026-02-28T06:00:00Z", states[4].State)
	assert.Equal(t, "timestamp", states[4].Attributes["device_class"])
}

func TestBuildSensors_MissingPowerAndPace(t *testing.T) {
	opts := optsWithSlots(1)
	opts.KPIs = [model.KPIsPerSlot]model.KPI{model.KPIPace, model.KPIPower, model.KPITitle, model.KPIDistance, model.KPILocation}

	states := application.BuildSensors([]model.Activity{{ID: 1, Name: "Yoga"}}, opts, fixedNow)

	assert.Equal(t, model.StateUnknown, states[0].State)
	assert.Equal(t, model.StateUnknown, states[1].State)
	assert.Equal(t, "Yoga", states[2].State)
	assert.Equal(t, "0.00", states[3].State)
	assert.Equal(t, model.LocationPlaceholder, states[4].State)
}

func TestBuildSensors_TruncatesExtraActivities(t *testing.T) {
	activities := []model.Activity{ride(1, nil), ride(2, nil), ride(3, nil)}

	states := application.BuildSensors(activities, optsWithSlots(2), fixedNow)

	summary := states[len(states)-1]
	assert.Equal(t, "2", summary.State)
	assert.InDelta(t, 40.0, summary.Attributes["total_distance"], 1e-9)
}

func TestBuildSummary(t *testing.T) {
	activities := []model.Activity{ride(1, nil), ride(2, nil)}

	summary := application.BuildSummary(activities, optsWithSlots(5), false, fixedNow)

	assert.Equal(t, application.SummaryEntityID, summary.EntityID)
	assert.Equal(t, "2", summary.State)
	assert.Equal(t, false, summary.Attributes["last_update_success"])
	assert.Equal(t, "metric", summary.Attributes["unit_system"])
	assert.Equal(t, 5, summary.Attributes["slot_count"])
	assert.InDelta(t, 40.0, summary.Attributes["total_distance"], 1e-9)
	assert.InDelta(t, 120.0, summary.Attributes["total_moving_time"], 1e-9)
	assert.InDelta(t, 300.0, summary.Attributes["total_elevation"], 1e-9)
	assert.Equal(t, "2026-03-01T12:00:00Z", summary.Attributes["last_sync"])
}

func TestBuildSummary_NeverSynced(t *testing.T) {
	summary := application.BuildSummary(nil, optsWithSlots(1), false, time.Time{})

	assert.Equal(t, "0", summary.State)
	assert.NotContains(t, summary.Attributes, "last_sync")
}

func TestOutOfRangeEntityIDs(t *testing.T) {
	assert.Empty(t, application.OutOfRangeEntityIDs(10))
	assert.Len(t, application.OutOfRangeEntityIDs(1), 9*model.KPIsPerSlot)

	ids := application.OutOfRangeEntityIDs(9)
	assert.Equal(t, application.SlotEntityIDs(9), ids)
}
