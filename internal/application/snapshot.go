package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// Snapshot is the most recent sync result served to the HTTP API.
type Snapshot struct {
	Activities          []model.Activity
	Sensors             []model.SensorState
	LastSuccess         time.Time
	LastAttempt         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsStale returns true when the last sync attempt failed.
func (s Snapshot) IsStale() bool {
	return s.ConsecutiveFailures > 0
}

// SnapshotStore coordinates concurrent access to the latest Snapshot.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// RecordSuccess replaces activities and sensors and resets the failure count.
func (s *SnapshotStore) RecordSuccess(activities []model.Activity, sensors []model.SensorState, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Activities = cloneActivities(activities)
	s.snapshot.Sensors = cloneSensors(sensors)
	s.snapshot.LastSuccess = at
	s.snapshot.LastAttempt = at
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// RecordFailure keeps the previous data but records err. summary, when
// non-nil, replaces the stored summary sensor.
func (s *SnapshotStore) RecordFailure(err error, summary *model.SensorState, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastAttempt = at
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++

	if summary == nil {
		return
	}
	for i := range s.snapshot.Sensors {
		if s.snapshot.Sensors[i].EntityID == summary.EntityID {
			s.snapshot.Sensors[i] = *summary
			return
		}
	}
	s.snapshot.Sensors = append(s.snapshot.Sensors, *summary)
}

// Snapshot returns a copy of the current snapshot.
func (s *SnapshotStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Activities = cloneActivities(s.snapshot.Activities)
	snap.Sensors = cloneSensors(s.snapshot.Sensors)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneActivities(items []model.Activity) []model.Activity {
	if len(items) == 0 {
		return nil
	}
	dup := make([]model.Activity, len(items))
	copy(dup, items)
	return dup
}

// cloneSensors copies states and their attribute maps.
func cloneSensors(items []model.SensorState) []model.SensorState {
	if len(items) == 0 {
		return nil
	}
	dup := make([]model.SensorState, len(items))
	for i, st := range items {
		attrs := make(map[string]any, len(st.Attributes))
		for k, v := range st.Attributes {
			attrs[k] = v
		}
		dup[i] = model.SensorState{EntityID: st.EntityID, State: st.State, Attributes: attrs}
	}
	return dup
}
