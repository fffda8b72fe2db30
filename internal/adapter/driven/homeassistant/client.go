// Package homeassistant publishes sensor states and notifications through the
// Home Assistant REST API.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SensorPublisher = (*Client)(nil)

// Client implements driven.SensorPublisher with a long-lived access token.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	token   string
}

// NewClient creates a Home Assistant client for baseURL (e.g. http://homeassistant.local:8123).
func NewClient(baseURL, token string) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{Timeout: 10 * time.Second}, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing home assistant URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("home assistant URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{http: httpClient, baseURL: u, token: token}, nil
}

type statePayload struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Publish creates or replaces the entity state.
func (c *Client) Publish(ctx context.Context, state model.SensorState) error {
	err := c.do(ctx, http.MethodPost, c.baseURL.JoinPath("api", "states", state.EntityID),
		statePayload{State: state.State, Attributes: state.Attributes}, false)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", state.EntityID, err)
	}
	return nil
}

// Remove deletes the entity state. A 404 means it is already gone.
func (c *Client) Remove(ctx context.Context, entityID string) error {
	if err := c.do(ctx, http.MethodDelete, c.baseURL.JoinPath("api", "states", entityID), nil, true); err != nil {
		return fmt.Errorf("removing %s: %w", entityID, err)
	}
	return nil
}

// Notify raises a persistent notification. Raising the same ID twice replaces it.
func (c *Client) Notify(ctx context.Context, n model.Notification) error {
	payload := map[string]string{
		"notification_id": n.ID,
		"title":           n.Title,
		"message":         n.Message,
	}
	if err := c.do(ctx, http.MethodPost, c.serviceURL("create"), payload, false); err != nil {
		return fmt.Errorf("creating notification %s: %w", n.ID, err)
	}
	return nil
}

// Dismiss removes a persistent notification.
func (c *Client) Dismiss(ctx context.Context, notificationID string) error {
	payload := map[string]string{"notification_id": notificationID}
	if err := c.do(ctx, http.MethodPost, c.serviceURL("dismiss"), payload, false); err != nil {
		return fmt.Errorf("dismissing notification %s: %w", notificationID, err)
	}
	return nil
}

func (c *Client) serviceURL(service string) *url.URL {
	return c.baseURL.JoinPath("api", "services", "persistent_notification", service)
}

func (c *Client) do(ctx context.Context, method string, endpoint *url.URL, body any, allowNotFound bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", driven.ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	slog.Debug("home assistant call", "method", method, "path", endpoint.Path, "status", resp.StatusCode)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return nil
	case resp.StatusCode == http.StatusNotFound && allowNotFound:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("home assistant rejected access token (status %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("status %d: %w", resp.StatusCode, driven.ErrUnavailable)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
