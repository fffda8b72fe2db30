package application

import (
	"errors"
	"time"

	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Strava's short-term rate limit resets at 0, 15, 30 and 45 minutes past the hour.
const rateLimitWindow = 15 * time.Minute

// Backoff bounds for consecutive failures. The delay doubles per failure up to
// base << maxBackoffShift, and never exceeds maxPollDelay unless base does.
const (
	maxBackoffShift = 3
	maxPollDelay    = time.Hour
)

// nextPollDelay returns how long the loop waits before the next scheduled
// cycle. Healthy cycles use base. Failures back off exponentially, and a rate
// limited cycle also waits for the current rate limit window to reset. Auth
// failures keep base so a re-link is picked up promptly.
func nextPollDelay(base time.Duration, snap Snapshot, now time.Time) time.Duration {
	if snap.ConsecutiveFailures == 0 {
		return base
	}
	if errors.Is(snap.LastError, driven.ErrNotAuthenticated) || errors.Is(snap.LastError, driven.ErrAuthExpired) {
		return base
	}

	delay := base << min(snap.ConsecutiveFailures-1, maxBackoffShift)
	delay = min(delay, max(base, maxPollDelay))

	if errors.Is(snap.LastError, driven.ErrRateLimited) {
		delay = max(delay, untilWindowReset(now))
	}
	return delay
}

// untilWindowReset is the time left in the current rate limit window.
func untilWindowReset(now time.Time) time.Duration {
	return now.Truncate(rateLimitWindow).Add(rateLimitWindow).Sub(now)
}
