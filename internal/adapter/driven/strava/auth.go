package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StravaAuth = (*Authorizer)(nil)

// Endpoint is the Strava OAuth2 endpoint. Strava expects client credentials
// in the request body rather than via HTTP basic auth.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// scopes is sent verbatim; Strava separates scopes with commas.
var scopes = []string{"read,activity:read_all"}

// Authorizer implements the driven.StravaAuth port on top of x/oauth2.
type Authorizer struct {
	config *oauth2.Config
	client *http.Client
}

// NewAuthorizer creates an Authorizer for the production Strava endpoint.
func NewAuthorizer(clientID, clientSecret, redirectURL string) *Authorizer {
	return NewAuthorizerWithEndpoint(&http.Client{Timeout: 30 * time.Second}, Endpoint, clientID, clientSecret, redirectURL)
}

// NewAuthorizerWithEndpoint creates an Authorizer with a custom http.Client
// and endpoint. This constructor is intended for testing against an httptest server.
func NewAuthorizerWithEndpoint(httpClient *http.Client, endpoint oauth2.Endpoint, clientID, clientSecret, redirectURL string) *Authorizer {
	return &Authorizer{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		client: httpClient,
	}
}

// AuthCodeURL returns the Strava authorization URL. approval_prompt=force
// makes Strava always show the consent screen so scopes can be re-granted.
func (a *Authorizer) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// Exchange trades an authorization code for tokens.
func (a *Authorizer) Exchange(ctx context.Context, code string) (*model.Credentials, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("authorization code cannot be empty")
	}

	tok, err := a.config.Exchange(a.withClient(ctx), code)
	if err != nil {
		return nil, classifyTokenError("exchange authorization code", err, false)
	}

	return a.toCredentials(tok, ""), nil
}

// Refresh obtains a new access token using the stored refresh token. Strava
// may rotate the refresh token; the previous one is kept if none is returned.
func (a *Authorizer) Refresh(ctx context.Context, creds model.Credentials) (*model.Credentials, error) {
	if !creds.HasRefreshToken() {
		return nil, fmt.Errorf("refresh access token: %w", driven.ErrAuthExpired)
	}

	// An empty access token is never valid, so the source always hits the token endpoint.
	src := a.config.TokenSource(a.withClient(ctx), &oauth2.Token{RefreshToken: creds.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyTokenError("refresh access token", err, true)
	}

	refreshed := a.toCredentials(tok, creds.RefreshToken)
	if refreshed.AthleteID == 0 {
		refreshed.AthleteID = creds.AthleteID
	}
	return refreshed, nil
}

func (a *Authorizer) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

// toCredentials maps an oauth2 token onto domain credentials. Strava returns
// an absolute expires_at alongside expires_in; the absolute value wins.
func (a *Authorizer) toCredentials(tok *oauth2.Token, previousRefresh string) *model.Credentials {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}

	expiresAt := tok.Expiry
	if ts, ok := unixExtra(tok.Extra("expires_at")); ok {
		expiresAt = time.Unix(ts, 0)
	}

	var athleteID int64
	if athlete, ok := tok.Extra("athlete").(map[string]any); ok {
		athleteID, _ = unixExtra(athlete["id"])
	}

	return &model.Credentials{
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		AthleteID:    athleteID,
	}
}

// unixExtra reads an integer from a decoded JSON token field.
func unixExtra(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n > 0
	case json.Number:
		i, err := n.Int64()
		return i, err == nil && i > 0
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil && i > 0
	default:
		return 0, false
	}
}

// classifyTokenError maps token endpoint failures onto port sentinels.
// Strava reports a bad client id or secret as an error on the "Application"
// resource; any other 4xx means the code or refresh token was rejected.
func classifyTokenError(op string, err error, refreshing bool) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return fmt.Errorf("%s: %w: %w", op, driven.ErrUnavailable, err)
	}

	status := re.Response.StatusCode
	switch {
	case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: status %d: %w", op, status, driven.ErrUnavailable)
	case strings.Contains(string(re.Body), `"Application"`):
		return fmt.Errorf("%s: status %d: %w", op, status, driven.ErrMisconfigured)
	case refreshing:
		return fmt.Errorf("%s: status %d: %w", op, status, driven.ErrAuthExpired)
	default:
		return fmt.Errorf("%s: status %d: %s", op, status, strings.TrimSpace(string(re.Body)))
	}
}
