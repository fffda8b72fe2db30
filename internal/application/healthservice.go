package application

import (
	"context"
	"time"
)

// Health status values.
const (
	HealthOK              = "ok"
	HealthDegraded        = "degraded"
	HealthUnauthenticated = "unauthenticated"
)

// HealthReport is the readiness view served by the HTTP API.
type HealthReport struct {
	Status              string    `json:"status"`
	Authenticated       bool      `json:"authenticated"`
	AthleteID           int64     `json:"athlete_id,omitempty"`
	TokenExpiresAt      time.Time `json:"token_expires_at,omitzero"`
	LastSync            time.Time `json:"last_sync,omitzero"`
	LastAttempt         time.Time `json:"last_attempt,omitzero"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Sensors             int       `json:"sensors"`
	StorageReady        bool      `json:"storage_ready"`
	StorageError        string    `json:"storage_error,omitempty"`
}

type authStatusSource interface {
	Status(ctx context.Context) (AuthStatus, error)
}

type snapshotSource interface {
	Snapshot() Snapshot
}

type storagePinger interface {
	Ping(ctx context.Context) error
}

// HealthService combines the credential state, the local store and the latest
// sync snapshot.
type HealthService struct {
	auth      authStatusSource
	snapshots snapshotSource
	storage   storagePinger
}

// NewHealthService creates a new HealthService. storage may be nil when
// nothing local needs checking.
func NewHealthService(auth authStatusSource, snapshots snapshotSource, storage storagePinger) *HealthService {
	return &HealthService{auth: auth, snapshots: snapshots, storage: storage}
}

// Report assembles the health view. The status is degraded while the store is
// unreachable or syncs fail, and unauthenticated until a Strava account is
// linked.
func (s *HealthService) Report(ctx context.Context) (HealthReport, error) {
	storageErr := s.pingStorage(ctx)

	auth, err := s.auth.Status(ctx)
	if err != nil {
		return HealthReport{}, err
	}

	snap := s.snapshots.Snapshot()
	report := HealthReport{
		Status:              HealthOK,
		Authenticated:       auth.Authenticated,
		AthleteID:           auth.AthleteID,
		TokenExpiresAt:      auth.ExpiresAt,
		LastSync:            snap.LastSuccess,
		LastAttempt:         snap.LastAttempt,
		ConsecutiveFailures: snap.ConsecutiveFailures,
		Sensors:             len(snap.Sensors),
		StorageReady:        storageErr == nil,
	}
	if snap.LastError != nil {
		report.LastError = snap.LastError.Error()
	}
	if storageErr != nil {
		report.StorageError = storageErr.Error()
	}

	switch {
	case storageErr != nil:
		report.Status = HealthDegraded
	case !auth.Authenticated:
		report.Status = HealthUnauthenticated
	case snap.IsStale():
		report.Status = HealthDegraded
	}
	return report, nil
}

func (s *HealthService) pingStorage(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Ping(ctx)
}
