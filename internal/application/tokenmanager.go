package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// RefreshMargin is how long before expiry an access token is refreshed.
// It matches the clock skew the host tolerates between itself and Strava.
const RefreshMargin = 20 * time.Second

// TokenManager owns the Strava credential lifecycle: code exchange, refresh
// ahead of expiry, invalidation after a 401 and logout. It is the only
// writer of the TokenStore.
type TokenManager struct {
	store driven.TokenStore
	auth  driven.StravaAuth
	now   func() time.Time

	mu sync.Mutex
}

// NewTokenManager creates a TokenManager. now defaults to time.Now when nil.
func NewTokenManager(store driven.TokenStore, auth driven.StravaAuth, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{store: store, auth: auth, now: now}
}

// AuthCodeURL returns the Strava authorization URL carrying state.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.auth.AuthCodeURL(state)
}

// Exchange trades an authorization code for credentials and persists them.
func (m *TokenManager) Exchange(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.auth.Exchange(ctx, code)
	if err != nil {
		return err
	}

	if err := m.store.Save(ctx, *creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	slog.InfoContext(ctx, "strava account linked", "athlete_id", creds.AthleteID, "expires_at", creds.ExpiresAt)
	return nil
}

// EnsureValidToken returns a usable access token, refreshing it first when
// the current time is within RefreshMargin of its expiry.
func (m *TokenManager) EnsureValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}
	if creds == nil {
		return "", driven.ErrNotAuthenticated
	}

	if !creds.NeedsRefresh(m.now(), RefreshMargin) {
		return creds.AccessToken, nil
	}

	slog.DebugContext(ctx, "refreshing strava access token", "expires_at", creds.ExpiresAt)

	refreshed, err := m.auth.Refresh(ctx, *creds)
	if err != nil {
		return "", err
	}
	if refreshed.ClientID == "" {
		refreshed.ClientID = creds.ClientID
		refreshed.ClientSecret = creds.ClientSecret
	}

	if err := m.store.Save(ctx, *refreshed); err != nil {
		return "", fmt.Errorf("saving refreshed credentials: %w", err)
	}

	slog.InfoContext(ctx, "strava access token refreshed", "expires_at", refreshed.ExpiresAt)
	return refreshed.AccessToken, nil
}

// Invalidate marks the stored access token as expired so the next
// EnsureValidToken call refreshes it. It is a no-op without credentials.
func (m *TokenManager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	if creds == nil {
		return nil
	}

	creds.Invalidate()
	if err := m.store.Save(ctx, *creds); err != nil {
		return fmt.Errorf("saving invalidated credentials: %w", err)
	}
	return nil
}

// Logout removes the stored credentials.
func (m *TokenManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}

// Status reports whether credentials are stored, along with their expiry.
func (m *TokenManager) Status(ctx context.Context) (AuthStatus, error) {
	creds, err := m.store.Load(ctx)
	if err != nil {
		return AuthStatus{}, fmt.Errorf("loading credentials: %w", err)
	}
	if creds == nil {
		return AuthStatus{}, nil
	}
	return AuthStatus{
		Authenticated: creds.HasRefreshToken(),
		AthleteID:     creds.AthleteID,
		ExpiresAt:     creds.ExpiresAt,
	}, nil
}

// AuthStatus summarizes the stored credentials without exposing tokens.
type AuthStatus struct {
	Authenticated bool
	AthleteID     int64
	ExpiresAt     time.Time
}
