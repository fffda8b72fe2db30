// Package keyring stores Strava credentials in the operating system keyring.
package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*Store)(nil)

const (
	// DefaultService is the keyring service name credentials are filed under.
	DefaultService = "hastrava"
	user           = "strava"
)

// Store implements driven.TokenStore on top of the OS keyring. The keyring
// calls do not accept a context; ctx is checked before each call.
type Store struct {
	service string
}

// NewStore creates a keyring-backed TokenStore for the given service name.
func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Load returns the stored credentials, or (nil, nil) when the keyring has no entry.
func (s *Store) Load(ctx context.Context) (*model.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, err := gokeyring.Get(s.service, user)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring entry %s/%s: %w", s.service, user, err)
	}

	var creds model.Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return nil, fmt.Errorf("decode keyring credentials: %w", err)
	}
	return &creds, nil
}

// Save writes the credentials as JSON, replacing any existing entry.
func (s *Store) Save(ctx context.Context, creds model.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := gokeyring.Set(s.service, user, string(data)); err != nil {
		return fmt.Errorf("write keyring entry %s/%s: %w", s.service, user, err)
	}
	return nil
}

// Clear deletes the keyring entry. A missing entry is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := gokeyring.Delete(s.service, user)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry %s/%s: %w", s.service, user, err)
	}
	return nil
}
