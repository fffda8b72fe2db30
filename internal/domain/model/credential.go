package model

import "time"

// Credentials holds the Strava OAuth client registration and the current
// access/refresh token pair. Only the token manager mutates it.
type Credentials struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	AthleteID    int64     `json:"athlete_id,omitempty"`
}

// NeedsRefresh reports whether now falls within margin of the access token
// expiry. A zero ExpiresAt always needs a refresh.
func (c Credentials) NeedsRefresh(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt.Add(-margin))
}

// Invalidate forces the next NeedsRefresh check to report true while keeping
// the refresh token.
func (c *Credentials) Invalidate() {
	c.ExpiresAt = time.Time{}
}

// HasRefreshToken returns true when a refresh token is available.
func (c Credentials) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
