package driven

import (
	"context"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// TokenStore defines the driven port for Strava credential persistence.
// Adapters are responsible for protecting values at rest; this interface
// operates on plaintext credentials at the domain boundary.
type TokenStore interface {
	// Load returns the stored credentials, or (nil, nil) when none exist.
	// Returns ErrEncryptionKeyNotSet if the adapter has no encryption key.
	Load(ctx context.Context) (*model.Credentials, error)

	// Save stores or replaces the credentials.
	Save(ctx context.Context, creds model.Credentials) error

	// Clear removes stored credentials. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
