package model

// StateUnknown is published for sensors whose slot has no activity.
const StateUnknown = "unknown"

// SensorState is one entity update pushed to the host.
type SensorState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// Notification is a persistent, user-visible message raised on the host.
type Notification struct {
	ID      string
	Title   string
	Message string
}
