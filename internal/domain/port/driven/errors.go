package driven

import "errors"

var (
	// ErrEncryptionKeyNotSet is returned by TokenStore operations when
	// HASTRAVA_SECRET_KEY has not been configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set HASTRAVA_SECRET_KEY")

	// ErrNotAuthenticated means no credentials are stored yet.
	ErrNotAuthenticated = errors.New("strava account not linked")

	// ErrAuthExpired means the refresh token was rejected; the user must re-authenticate.
	ErrAuthExpired = errors.New("strava authorization expired")

	// ErrMisconfigured means the client id or secret is missing or was rejected.
	ErrMisconfigured = errors.New("strava client id or secret missing or rejected")

	// ErrUnauthorized means an API call was rejected with HTTP 401.
	ErrUnauthorized = errors.New("strava access token rejected")

	// ErrRateLimited means an upstream API throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable means an upstream API could not be reached or failed.
	ErrUnavailable = errors.New("service unavailable")
)
