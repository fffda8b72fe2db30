package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/hastrava/internal/application"
	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SensorsResponse is the JSON representation of the latest sync snapshot.
type SensorsResponse struct {
	Sensors     []model.SensorState `json:"sensors"`
	Activities  int                 `json:"activities"`
	Stale       bool                `json:"stale"`
	LastSuccess string              `json:"last_success,omitempty"`
	LastError   string              `json:"last_error,omitempty"`
}

// OptionsResponse is the JSON representation of the active options.
type OptionsResponse struct {
	SlotCount  int      `json:"slot_count"`
	UnitSystem string   `json:"unit_system"`
	KPIs       []string `json:"kpis"`
	Geocode    bool     `json:"geocode"`
	Sensors    int      `json:"sensors"`
}

// UpdateOptionsRequest is the JSON body for the update options endpoint.
// Omitted fields keep their current value. Slot counts outside the supported
// range are clamped rather than rejected.
type UpdateOptionsRequest struct {
	SlotCount  *int     `json:"slot_count"`
	UnitSystem *string  `json:"unit_system" validate:"omitnil,oneof=metric imperial"`
	KPIs       []string `json:"kpis" validate:"omitempty,len=5,dive,kpi"`
	Geocode    *bool    `json:"geocode"`
}

// apply merges the request onto current.
func (r UpdateOptionsRequest) apply(current model.Options) model.Options {
	if r.SlotCount != nil {
		current.SlotCount = *r.SlotCount
	}
	if r.UnitSystem != nil {
		current.UnitSystem = model.UnitSystem(*r.UnitSystem)
	}
	for i, k := range r.KPIs {
		current.KPIs[i] = model.KPI(k)
	}
	if r.Geocode != nil {
		current.Geocode = *r.Geocode
	}
	return current
}

// RefreshResponse is returned after a manual sync completes.
type RefreshResponse struct {
	Sensors  int    `json:"sensors"`
	LastSync string `json:"last_sync"`
}

func toSensorsResponse(snap application.Snapshot) SensorsResponse {
	sensors := snap.Sensors
	if sensors == nil {
		sensors = []model.SensorState{}
	}

	resp := SensorsResponse{
		Sensors:    sensors,
		Activities: len(snap.Activities),
		Stale:      snap.IsStale(),
	}
	if !snap.LastSuccess.IsZero() {
		resp.LastSuccess = snap.LastSuccess.UTC().Format(time.RFC3339)
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return resp
}

func toOptionsResponse(opts model.Options) OptionsResponse {
	kpis := make([]string, 0, len(opts.KPIs))
	for _, k := range opts.KPIs {
		kpis = append(kpis, string(k))
	}

	return OptionsResponse{
		SlotCount:  opts.SlotCount,
		UnitSystem: string(opts.UnitSystem),
		KPIs:       kpis,
		Geocode:    opts.Geocode,
		Sensors:    opts.SensorCount(),
	}
}
