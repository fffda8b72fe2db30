// Package geocode resolves activity start coordinates to place names via geocode.xyz.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Geocoder = (*Client)(nil)

const defaultBaseURL = "https://geocode.xyz/"

// Client implements driven.Geocoder. An optional API key lifts the
// anonymous throttle of one request per second.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
}

// NewClient creates a geocode.xyz client. apiKey may be empty.
func NewClient(apiKey string) *Client {
	base, _ := url.Parse(defaultBaseURL)
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   15 * time.Second,
		},
		baseURL: base,
		apiKey:  apiKey,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, apiKey string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{http: httpClient, baseURL: u, apiKey: apiKey}, nil
}

type reverseResponse struct {
	City    textField  `json:"city"`
	Region  textField  `json:"region"`
	Country textField  `json:"country"`
	Error   *errorBody `json:"error"`
}

// textField decodes a JSON string and treats any other value as empty.
// geocode.xyz reports unresolved fields as "{}".
type textField string

func (f *textField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = ""
		return nil
	}
	*f = textField(s)
	return nil
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ReverseGeocode returns the city for the given point, falling back to the
// region and then the country.
func (c *Client) ReverseGeocode(ctx context.Context, point model.LatLng) (string, error) {
	coords := strconv.FormatFloat(point.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(point.Lng, 'f', -1, 64)
	endpoint := c.baseURL.JoinPath(coords)
	q := endpoint.Query()
	q.Set("geoit", "json")
	if c.apiKey != "" {
		q.Set("auth", c.apiKey)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w: %w", driven.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("reverse geocode: status %d: %w", resp.StatusCode, driven.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("reverse geocode: status %d: %w", resp.StatusCode, driven.ErrUnavailable)
	}

	var body reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding geocode response: %w", err)
	}

	// geocode.xyz throttles with a 200 and an error body.
	if body.Error != nil {
		if strings.Contains(strings.ToLower(body.Error.Description), "throttled") {
			return "", fmt.Errorf("reverse geocode: %s: %w", body.Error.Description, driven.ErrRateLimited)
		}
		return "", fmt.Errorf("reverse geocode: %s (%s)", body.Error.Description, body.Error.Code)
	}

	if name := pickName(body); name != "" {
		return name, nil
	}
	return "", errors.New("reverse geocode: no place name for coordinates")
}

func pickName(r reverseResponse) string {
	for _, candidate := range []textField{r.City, r.Region, r.Country} {
		if name := strings.TrimSpace(string(candidate)); name != "" {
			return titleCase(name)
		}
	}
	return ""
}

// titleCase turns geocode.xyz's upper-case city names ("ZURICH") into "Zurich".
func titleCase(s string) string {
	if s != strings.ToUpper(s) {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
