package application

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// SummaryEntityID is the entity carrying aggregate totals and sync health.
const SummaryEntityID = "sensor.strava_summary"

const attribution = "Data provided by Strava"

// KPIEntityID returns the entity id for slot (0-based) and kpiIndex (1-based).
func KPIEntityID(slot, kpiIndex int) string {
	return fmt.Sprintf("sensor.strava_%d_%d", slot, kpiIndex)
}

// SlotEntityIDs returns the KPI entity ids backing slot.
func SlotEntityIDs(slot int) []string {
	ids := make([]string, 0, model.KPIsPerSlot)
	for k := 1; k <= model.KPIsPerSlot; k++ {
		ids = append(ids, KPIEntityID(slot, k))
	}
	return ids
}

// OutOfRangeEntityIDs returns the KPI entity ids of every slot at or beyond
// slotCount, up to model.MaxSlots.
func OutOfRangeEntityIDs(slotCount int) []string {
	var ids []string
	for slot := model.ClampSlots(slotCount); slot < model.MaxSlots; slot++ {
		ids = append(ids, SlotEntityIDs(slot)...)
	}
	return ids
}

// BuildSensors maps activities onto exactly 5*ClampSlots(opts.SlotCount)+1
// sensor states: the KPI sensors slot by slot, then the summary. Slots
// without an activity read "unknown".
func BuildSensors(activities []model.Activity, opts model.Options, now time.Time) []model.SensorState {
	opts = opts.Normalized()
	slots := opts.SlotCount

	if len(activities) > slots {
		activities = activities[:slots]
	}

	states := make([]model.SensorState, 0, opts.SensorCount())
	for slot := 0; slot < slots; slot++ {
		var act *model.Activity
		if slot < len(activities) {
			act = &activities[slot]
		}
		for i, kpi := range opts.KPIs {
			states = append(states, kpiSensor(slot, i+1, kpi, act, opts.UnitSystem))
		}
	}

	states = append(states, BuildSummary(activities, opts, true, now))
	return states
}

func kpiSensor(slot, kpiIndex int, kpi model.KPI, act *model.Activity, u model.UnitSystem) model.SensorState {
	attrs := map[string]any{
		"friendly_name": fmt.Sprintf("Strava %d %s", slot, kpi.Label()),
		"kpi":           string(kpi),
		"slot":          slot,
		"attribution":   attribution,
		"icon":          model.ActivityTypeOther.Icon(),
	}
	if unit := kpi.Unit(u); unit != "" {
		attrs["unit_of_measurement"] = unit
	}
	if dc := kpi.DeviceClass(); dc != "" {
		attrs["device_class"] = dc
	}
	if kpi.Numeric() {
		attrs["state_class"] = "measurement"
	}

	state := model.SensorState{EntityID: KPIEntityID(slot, kpiIndex), State: model.StateUnknown, Attributes: attrs}
	if act == nil {
		return state
	}

	attrs["icon"] = act.Type.Icon()
	attrs["activity_id"] = act.ID
	attrs["title"] = act.Name
	attrs["sport_type"] = act.SportType
	attrs["start_date"] = act.StartDate.UTC().Format(time.RFC3339)
	attrs["location"] = locationOf(*act)

	state.State = kpiValue(kpi, *act, u)
	return state
}

// kpiValue formats the KPI for one activity. Rounding happens only here.
func kpiValue(kpi model.KPI, a model.Activity, u model.UnitSystem) string {
	switch kpi {
	case model.KPIDistance:
		return formatFloat(model.DistanceFromMeters(a.Distance, u), 2)
	case model.KPIMovingTime:
		return formatFloat(float64(a.MovingTime)/60, 1)
	case model.KPIPace:
		if a.Distance <= 0 || a.MovingTime <= 0 {
			return model.StateUnknown
		}
		return formatFloat(model.PaceFromSecondsPerMeter(a.Pace(), u), 2)
	case model.KPISpeed:
		return formatFloat(model.SpeedFromMPS(a.AverageSpeed(), u), 1)
	case model.KPIElevation:
		return formatFloat(model.ElevationFromMeters(a.ElevationGain, u), 0)
	case model.KPICalories:
		return formatFloat(a.Calories, 0)
	case model.KPIKudos:
		return strconv.Itoa(a.Kudos)
	case model.KPIPower:
		if a.AveragePower <= 0 {
			return model.StateUnknown
		}
		return formatFloat(a.AveragePower, 0)
	case model.KPILocation:
		return locationOf(a)
	case model.KPITitle:
		return a.Name
	case model.KPIDate:
		return a.StartDate.UTC().Format(time.RFC3339)
	default:
		return model.StateUnknown
	}
}

// BuildSummary builds the summary entity over the tracked activities.
// lastSync is the time of the last successful sync.
func BuildSummary(activities []model.Activity, opts model.Options, success bool, lastSync time.Time) model.SensorState {
	opts = opts.Normalized()
	if len(activities) > opts.SlotCount {
		activities = activities[:opts.SlotCount]
	}

	var distance, elevation float64
	var moving int
	for _, a := range activities {
		distance += a.Distance
		elevation += a.ElevationGain
		moving += a.MovingTime
	}

	attrs := map[string]any{
		"friendly_name":       "Strava Summary",
		"icon":                "mdi:strava",
		"attribution":         attribution,
		"unit_system":         string(opts.UnitSystem),
		"slot_count":          opts.SlotCount,
		"total_distance":      roundTo(model.DistanceFromMeters(distance, opts.UnitSystem), 2),
		"distance_unit":       model.DistanceUnit(opts.UnitSystem),
		"total_moving_time":   roundTo(float64(moving)/60, 1),
		"total_elevation":     roundTo(model.ElevationFromMeters(elevation, opts.UnitSystem), 0),
		"elevation_unit":      model.ElevationUnit(opts.UnitSystem),
		"last_update_success": success,
		"state_class":         "measurement",
	}
	if !lastSync.IsZero() {
		attrs["last_sync"] = lastSync.UTC().Format(time.RFC3339)
	}

	return model.SensorState{
		EntityID:   SummaryEntityID,
		State:      strconv.Itoa(len(activities)),
		Attributes: attrs,
	}
}

func locationOf(a model.Activity) string {
	if a.Location == "" {
		return model.LocationPlaceholder
	}
	return a.Location
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(roundTo(v, decimals), 'f', decimals, 64)
}
