package model

// Slot bounds for tracked activities.
const (
	MinSlots = 1
	MaxSlots = 10
)

// KPIsPerSlot is the number of customizable KPI sensors backing each slot.
const KPIsPerSlot = 5

// DefaultKPIs is the KPI selection used until the user customizes it.
var DefaultKPIs = [KPIsPerSlot]KPI{KPIDistance, KPIMovingTime, KPISpeed, KPIElevation, KPILocation}

// Options holds the user-adjustable settings applied on every sync cycle.
type Options struct {
	SlotCount  int              `json:"slot_count"`
	UnitSystem UnitSystem       `json:"unit_system"`
	KPIs       [KPIsPerSlot]KPI `json:"kpis"`
	Geocode    bool             `json:"geocode"`
}

// DefaultOptions returns options tracking all slots in metric units.
func DefaultOptions() Options {
	return Options{
		SlotCount:  MaxSlots,
		UnitSystem: UnitSystemMetric,
		KPIs:       DefaultKPIs,
		Geocode:    true,
	}
}

// ClampSlots bounds n to [MinSlots, MaxSlots].
func ClampSlots(n int) int {
	if n < MinSlots {
		return MinSlots
	}
	if n > MaxSlots {
		return MaxSlots
	}
	return n
}

// Normalized returns a copy with the slot count clamped, an unknown unit
// system replaced by metric and unknown KPIs replaced by their defaults.
func (o Options) Normalized() Options {
	o.SlotCount = ClampSlots(o.SlotCount)
	if !o.UnitSystem.Valid() {
		o.UnitSystem = UnitSystemMetric
	}
	for i, k := range o.KPIs {
		if !k.Valid() {
			o.KPIs[i] = DefaultKPIs[i]
		}
	}
	return o
}

// SensorCount is the number of entities published for these options.
func (o Options) SensorCount() int {
	return KPIsPerSlot*ClampSlots(o.SlotCount) + 1
}
