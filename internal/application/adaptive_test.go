package application

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

func TestNextPollDelay(t *testing.T) {
	base := 10 * time.Minute
	// 12:07:30, so the rate limit window resets in 7m30s.
	now := time.Date(2026, 3, 1, 12, 7, 30, 0, time.UTC)

	tests := []struct {
		name     string
		failures int
		err      error
		base     time.Duration
		want     time.Duration
	}{
		{name: "healthy uses base", want: base},
		{name: "first failure", failures: 1, err: driven.ErrUnavailable, want: base},
		{name: "second failure doubles", failures: 2, err: driven.ErrUnavailable, want: 20 * time.Minute},
		{name: "third failure doubles again", failures: 3, err: driven.ErrUnavailable, want: 40 * time.Minute},
		{name: "capped at an hour", failures: 9, err: driven.ErrUnavailable, want: time.Hour},
		{name: "not linked keeps base", failures: 5, err: driven.ErrNotAuthenticated, want: base},
		{
			name:     "expired keeps base when wrapped",
			failures: 5,
			err:      fmt.Errorf("refreshing token: %w", driven.ErrAuthExpired),
			want:     base,
		},
		{
			name:     "rate limited waits for the window",
			failures: 1,
			err:      driven.ErrRateLimited,
			base:     time.Minute,
			want:     7*time.Minute + 30*time.Second,
		},
		{
			name:     "rate limited backoff longer than window",
			failures: 2,
			err:      driven.ErrRateLimited,
			want:     20 * time.Minute,
		},
		{
			name:     "base above cap is kept",
			failures: 4,
			err:      errors.New("publish failed"),
			base:     2 * time.Hour,
			want:     2 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.base
			if b == 0 {
				b = base
			}
			snap := Snapshot{ConsecutiveFailures: tt.failures, LastError: tt.err}
			assert.Equal(t, tt.want, nextPollDelay(b, snap, now))
		})
	}
}

func TestUntilWindowReset(t *testing.T) {
	tests := []struct {
		at   time.Time
		want time.Duration
	}{
		{at: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), want: 15 * time.Minute},
		{at: time.Date(2026, 3, 1, 12, 14, 59, 0, time.UTC), want: time.Second},
		{at: time.Date(2026, 3, 1, 12, 45, 0, 0, time.UTC), want: 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.at.Format("15:04:05"), func(t *testing.T) {
			assert.Equal(t, tt.want, untilWindowReset(tt.at))
		})
	}
}
