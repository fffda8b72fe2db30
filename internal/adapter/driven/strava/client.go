// Package strava implements the Strava OAuth and activities ports.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StravaClient = (*Client)(nil)

const maxResponseBytes = 4 << 20

// Client implements the driven.StravaClient port against the Strava REST API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a Strava API client whose transport revalidates cached
// responses with ETags, so unchanged activity lists cost a 304.
func NewClient() *Client {
	base, _ := url.Parse("https://www.strava.com/api/v3/")
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
		baseURL: base,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{http: httpClient, baseURL: u}, nil
}

// activityJSON is the subset of Strava's SummaryActivity we consume.
type activityJSON struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	KudosCount         int       `json:"kudos_count"`
	AverageWatts       float64   `json:"average_watts"`
	Kilojoules         float64   `json:"kilojoules"`
	Calories           float64   `json:"calories"`
	StartLatLng        []float64 `json:"start_latlng"`
}

// ListActivities fetches the first page of the athlete's activities with
// per_page set to the requested count, newest first.
func (c *Client) ListActivities(ctx context.Context, accessToken string, perPage int) ([]model.Activity, error) {
	if perPage < 1 {
		perPage = 1
	}

	endpoint := c.baseURL.JoinPath("athlete", "activities")
	q := endpoint.Query()
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", "1")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating activities request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w: %w", driven.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	logRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("listing activities: %w", driven.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("listing activities: %w", driven.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("listing activities: status %d: %w", resp.StatusCode, driven.ErrUnavailable)
	}

	var payload []activityJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	if len(payload) > perPage {
		payload = payload[:perPage]
	}

	activities := make([]model.Activity, 0, len(payload))
	for _, a := range payload {
		activities = append(activities, mapActivity(a))
	}
	return activities, nil
}

// mapActivity converts a Strava SummaryActivity into a domain Activity.
// Summary activities carry no calories for most sport types; kilojoules of
// mechanical work approximate kilocalories burned for rides.
func mapActivity(a activityJSON) model.Activity {
	sport := a.SportType
	if sport == "" {
		sport = a.Type
	}

	calories := a.Calories
	if calories <= 0 {
		calories = a.Kilojoules
	}

	var start *model.LatLng
	if len(a.StartLatLng) == 2 {
		start = &model.LatLng{Lat: a.StartLatLng[0], Lng: a.StartLatLng[1]}
	}

	return model.Activity{
		ID:            a.ID,
		Name:          a.Name,
		Type:          model.NormalizeActivityType(sport),
		SportType:     sport,
		StartDate:     a.StartDate,
		Distance:      a.Distance,
		MovingTime:    a.MovingTime,
		ElapsedTime:   a.ElapsedTime,
		ElevationGain: a.TotalElevationGain,
		Calories:      calories,
		Kudos:         a.KudosCount,
		AveragePower:  a.AverageWatts,
		StartLatLng:   start,
	}
}

// logRateLimit logs the Strava rate limit usage after each call. Strava
// reports "15min,daily" pairs in X-RateLimit-Limit and X-RateLimit-Usage.
func logRateLimit(resp *http.Response) {
	limit := resp.Header.Get("X-RateLimit-Limit")
	usage := resp.Header.Get("X-RateLimit-Usage")

	slog.Debug("strava api call",
		"status", resp.StatusCode,
		"rate_limit", limit,
		"rate_usage", usage,
		"from_cache", resp.Header.Get(httpcache.XFromCache) == "1",
	)

	if limit == "" || usage == "" {
		return
	}

	limits := strings.Split(limit, ",")
	usages := strings.Split(usage, ",")
	for i := range min(len(limits), len(usages)) {
		l, errL := strconv.Atoi(strings.TrimSpace(limits[i]))
		u, errU := strconv.Atoi(strings.TrimSpace(usages[i]))
		if errL != nil || errU != nil || l == 0 {
			continue
		}
		if u*10 >= l*9 {
			slog.Warn("strava rate limit nearly exhausted", "window", i, "usage", u, "limit", l)
		}
	}
}
