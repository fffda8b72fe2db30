// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

const tracerName = "github.com/ericfisherdev/hastrava/internal/application"

// ReauthNotificationID identifies the notification raised while the Strava
// authorization is expired.
const ReauthNotificationID = "hastrava_reauth"

// TokenProvider hands out valid access tokens to the poller.
type TokenProvider interface {
	EnsureValidToken(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

type requestKind int

const (
	requestRefresh requestKind = iota
	requestOptions
)

// pollRequest is a manual refresh or options update served by the loop.
type pollRequest struct {
	kind requestKind
	opts model.Options
	done chan error
}

// PollService runs the sync cycle on a timer and serializes manual refresh
// and options updates through the same goroutine.
type PollService struct {
	tokens    TokenProvider
	strava    driven.StravaClient
	geocoder  driven.Geocoder
	locations driven.LocationStore
	options   driven.OptionsStore
	publisher driven.SensorPublisher
	tracer    trace.Tracer
	defaults  model.Options
	interval  time.Duration
	now       func() time.Time

	snapshots SnapshotStore
	requestCh chan pollRequest

	// Owned by the loop goroutine.
	published   map[string]struct{}
	authAlerted bool
}

// PollDeps groups the collaborators of a PollService. Geocoder may be nil.
// Tracer defaults to the global OpenTelemetry provider.
type PollDeps struct {
	Tokens    TokenProvider
	Strava    driven.StravaClient
	Geocoder  driven.Geocoder
	Locations driven.LocationStore
	Options   driven.OptionsStore
	Publisher driven.SensorPublisher
	Tracer    trace.Tracer
}

// NewPollService creates a PollService. defaults apply until options are
// saved; now defaults to time.Now when nil.
func NewPollService(deps PollDeps, defaults model.Options, interval time.Duration, now func() time.Time) *PollService {
	if now == nil {
		now = time.Now
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(tracerName)
	}
	return &PollService{
		tokens:    deps.Tokens,
		strava:    deps.Strava,
		geocoder:  deps.Geocoder,
		locations: deps.Locations,
		options:   deps.Options,
		publisher: deps.Publisher,
		tracer:    deps.Tracer,
		defaults:  defaults.Normalized(),
		interval:  interval,
		now:       now,
		requestCh: make(chan pollRequest),
		published: make(map[string]struct{}),
	}
}

// Start removes entities left over from a larger slot count, runs an
// immediate sync, then syncs on the configured interval, backing off while
// cycles fail. It also serves Refresh and UpdateOptions requests. Start
// blocks until ctx is canceled.
func (s *PollService) Start(ctx context.Context) {
	if opts, err := s.Options(ctx); err != nil {
		slog.ErrorContext(ctx, "loading options failed", "error", err)
	} else {
		s.removeOutOfRange(ctx, opts.SlotCount)
	}

	if err := s.sync(ctx); err != nil {
		slog.ErrorContext(ctx, "initial sync failed", "error", err)
	}

	timer := time.NewTimer(s.nextDelay(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "poll service stopped")
			return
		case <-timer.C:
			if err := s.sync(ctx); err != nil {
				slog.ErrorContext(ctx, "sync cycle failed", "error", err)
			}
			timer.Reset(s.nextDelay(ctx))
		case req := <-s.requestCh:
			req.done <- s.handle(ctx, req)
			// The request may have ended or started a failure streak.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.nextDelay(ctx))
		}
	}
}

func (s *PollService) nextDelay(ctx context.Context) time.Duration {
	snap := s.snapshots.Snapshot()
	delay := nextPollDelay(s.interval, snap, s.now())
	if delay != s.interval {
		slog.InfoContext(ctx, "backing off", "failures", snap.ConsecutiveFailures, "next_poll_in", delay)
	}
	return delay
}

// SyncOnce runs a single cycle without the loop. It must not be called while
// Start is running.
func (s *PollService) SyncOnce(ctx context.Context) error {
	opts, err := s.Options(ctx)
	if err != nil {
		return err
	}
	s.removeOutOfRange(ctx, opts.SlotCount)
	return s.sync(ctx)
}

// Refresh runs one sync cycle on the loop, bypassing the interval. It blocks
// until the cycle completes or ctx is canceled.
func (s *PollService) Refresh(ctx context.Context) error {
	return s.submit(ctx, pollRequest{kind: requestRefresh})
}

// UpdateOptions clamps and persists opts, removes entities for slots that are
// no longer tracked, then resyncs. The returned options are the stored ones.
// A failed resync is logged but not returned; the options still apply.
func (s *PollService) UpdateOptions(ctx context.Context, opts model.Options) (model.Options, error) {
	opts = opts.Normalized()
	if err := s.submit(ctx, pollRequest{kind: requestOptions, opts: opts}); err != nil {
		return model.Options{}, err
	}
	return opts, nil
}

// Options returns the saved options, or the defaults when none are saved.
func (s *PollService) Options(ctx context.Context) (model.Options, error) {
	opts, err := s.options.Get(ctx)
	if err != nil {
		return model.Options{}, fmt.Errorf("loading options: %w", err)
	}
	if opts == nil {
		return s.defaults, nil
	}
	return opts.Normalized(), nil
}

// Snapshot returns the latest sync result.
func (s *PollService) Snapshot() Snapshot {
	return s.snapshots.Snapshot()
}

func (s *PollService) submit(ctx context.Context, req pollRequest) error {
	req.done = make(chan error, 1)

	select {
	case s.requestCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PollService) handle(ctx context.Context, req pollRequest) error {
	switch req.kind {
	case requestOptions:
		if err := s.options.Set(ctx, req.opts); err != nil {
			return fmt.Errorf("saving options: %w", err)
		}
		slog.InfoContext(ctx, "options updated",
			"slot_count", req.opts.SlotCount,
			"unit_system", req.opts.UnitSystem,
			"geocode", req.opts.Geocode,
		)
		s.removeOutOfRange(ctx, req.opts.SlotCount)
		if err := s.sync(ctx); err != nil {
			slog.ErrorContext(ctx, "sync after options update failed", "error", err)
		}
		return nil
	default:
		slog.InfoContext(ctx, "manual refresh requested")
		return s.sync(ctx)
	}
}

// sync runs one cycle inside a span so every log line of the cycle carries
// the same trace id.
func (s *PollService) sync(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "PollService.sync")
	defer span.End()

	err := s.cycle(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// cycle is one poll: token, activities, locations, publish, prune.
func (s *PollService) cycle(ctx context.Context) error {
	start := s.now()

	opts, err := s.Options(ctx)
	if err != nil {
		return s.fail(ctx, s.defaults, err)
	}

	token, err := s.tokens.EnsureValidToken(ctx)
	if err != nil {
		return s.fail(ctx, opts, err)
	}

	activities, err := s.strava.ListActivities(ctx, token, opts.SlotCount)
	if err != nil {
		if errors.Is(err, driven.ErrUnauthorized) {
			if invErr := s.tokens.Invalidate(ctx); invErr != nil {
				slog.ErrorContext(ctx, "invalidating access token failed", "error", invErr)
			}
		}
		return s.fail(ctx, opts, err)
	}
	if len(activities) > opts.SlotCount {
		activities = activities[:opts.SlotCount]
	}

	s.resolveLocations(ctx, activities, opts.Geocode)

	states := BuildSensors(activities, opts, start)
	publishErr := s.publishAll(ctx, states)

	s.pruneLocations(ctx, activities)
	s.clearAuthAlert(ctx)
	s.snapshots.RecordSuccess(activities, states, start)

	if publishErr != nil {
		s.snapshots.RecordFailure(publishErr, nil, start)
		return publishErr
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("hastrava.activities", len(activities)),
		attribute.Int("hastrava.sensors", len(states)),
	)
	slog.InfoContext(ctx, "sync cycle complete",
		"activities", len(activities),
		"sensors", len(states),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// fail records an update failure. KPI entities keep their stale values; only
// the summary is republished with last_update_success=false.
func (s *PollService) fail(ctx context.Context, opts model.Options, err error) error {
	switch {
	case errors.Is(err, driven.ErrAuthExpired):
		s.raiseAuthAlert(ctx)
	case errors.Is(err, driven.ErrNotAuthenticated):
		slog.WarnContext(ctx, "strava account not linked; open /auth/login or run 'hastrava auth login'")
	}

	snap := s.snapshots.Snapshot()
	summary := BuildSummary(snap.Activities, opts, false, snap.LastSuccess)
	if pubErr := s.publisher.Publish(ctx, summary); pubErr != nil {
		slog.WarnContext(ctx, "publishing summary failed", "error", pubErr)
	} else {
		s.published[summary.EntityID] = struct{}{}
	}

	s.snapshots.RecordFailure(err, &summary, s.now())
	return err
}

// resolveLocations fills Location from the cache, then the geocoder (once
// per uncached activity), then the placeholder. Only resolved names are cached.
func (s *PollService) resolveLocations(ctx context.Context, activities []model.Activity, geocode bool) {
	var resolved, placeholders int

	for i := range activities {
		a := &activities[i]

		cached, err := s.locations.Get(ctx, a.ID)
		if err != nil {
			slog.WarnContext(ctx, "location cache read failed", "activity", a.ID, "error", err)
		}
		if cached != "" {
			a.Location = cached
			continue
		}

		if !geocode || s.geocoder == nil || a.StartLatLng == nil {
			a.Location = model.LocationPlaceholder
			placeholders++
			continue
		}

		name, err := s.geocoder.ReverseGeocode(ctx, *a.StartLatLng)
		if err != nil || name == "" {
			slog.WarnContext(ctx, "reverse geocode failed", "activity", a.ID, "error", err)
			a.Location = model.LocationPlaceholder
			placeholders++
			continue
		}

		a.Location = name
		resolved++
		if err := s.locations.Set(ctx, a.ID, name); err != nil {
			slog.WarnContext(ctx, "location cache write failed", "activity", a.ID, "error", err)
		}
	}

	if resolved > 0 || placeholders > 0 {
		slog.DebugContext(ctx, "locations resolved", "geocoded", resolved, "placeholders", placeholders)
	}
}

// publishAll pushes every state, then removes previously published entities
// that are no longer in the set.
func (s *PollService) publishAll(ctx context.Context, states []model.SensorState) error {
	var errs []error
	current := make(map[string]struct{}, len(states))

	for _, st := range states {
		current[st.EntityID] = struct{}{}
		if err := s.publisher.Publish(ctx, st); err != nil {
			errs = append(errs, err)
		}
	}

	for id := range s.published {
		if _, ok := current[id]; ok {
			continue
		}
		if err := s.publisher.Remove(ctx, id); err != nil {
			errs = append(errs, err)
			current[id] = struct{}{}
		}
	}
	s.published = current

	return errors.Join(errs...)
}

func (s *PollService) removeOutOfRange(ctx context.Context, slotCount int) {
	var removed int
	for _, id := range OutOfRangeEntityIDs(slotCount) {
		if err := s.publisher.Remove(ctx, id); err != nil {
			slog.WarnContext(ctx, "removing entity failed", "entity_id", id, "error", err)
			continue
		}
		delete(s.published, id)
		removed++
	}
	if removed > 0 {
		slog.DebugContext(ctx, "out-of-range entities removed", "slot_count", slotCount, "removed", removed)
	}
}

func (s *PollService) pruneLocations(ctx context.Context, activities []model.Activity) {
	keep := make([]int64, 0, len(activities))
	for _, a := range activities {
		keep = append(keep, a.ID)
	}
	if err := s.locations.Prune(ctx, keep); err != nil {
		slog.WarnContext(ctx, "location cache prune failed", "error", err)
	}
}

func (s *PollService) raiseAuthAlert(ctx context.Context) {
	if s.authAlerted {
		return
	}
	err := s.publisher.Notify(ctx, model.Notification{
		ID:      ReauthNotificationID,
		Title:   "Strava authorization expired",
		Message: "Strava rejected the stored refresh token. Re-authenticate hastrava to resume syncing activities.",
	})
	if err != nil {
		slog.ErrorContext(ctx, "raising re-auth notification failed", "error", err)
		return
	}
	s.authAlerted = true
	slog.WarnContext(ctx, "strava authorization expired; re-authentication required")
}

func (s *PollService) clearAuthAlert(ctx context.Context) {
	if !s.authAlerted {
		return
	}
	if err := s.publisher.Dismiss(ctx, ReauthNotificationID); err != nil {
		slog.WarnContext(ctx, "dismissing re-auth notification failed", "error", err)
		return
	}
	s.authAlerted = false
}
