package driven

import (
	"context"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// StravaAuth defines the driven port for the Strava OAuth2 token endpoints.
type StravaAuth interface {
	// AuthCodeURL returns the authorization URL the user must visit.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for a fresh credential set.
	// Returns ErrMisconfigured when the client id or secret is rejected.
	Exchange(ctx context.Context, code string) (*model.Credentials, error)
	// Refresh obtains a new access token using creds.RefreshToken.
	// Returns ErrAuthExpired when the refresh token is rejected and
	// ErrUnavailable for transport or server failures.
	Refresh(ctx context.Context, creds model.Credentials) (*model.Credentials, error)
}

// StravaClient defines the driven port for reading athlete activities.
type StravaClient interface {
	// ListActivities returns up to perPage of the athlete's most recent
	// activities, newest first. Returns ErrUnauthorized on HTTP 401 and
	// ErrRateLimited on HTTP 429.
	ListActivities(ctx context.Context, accessToken string, perPage int) ([]model.Activity, error)
}
