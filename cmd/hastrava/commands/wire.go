package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	geocodeadapter "github.com/ericfisherdev/hastrava/internal/adapter/driven/geocode"
	haadapter "github.com/ericfisherdev/hastrava/internal/adapter/driven/homeassistant"
	keyringadapter "github.com/ericfisherdev/hastrava/internal/adapter/driven/keyring"
	sqliteadapter "github.com/ericfisherdev/hastrava/internal/adapter/driven/sqlite"
	stravaadapter "github.com/ericfisherdev/hastrava/internal/adapter/driven/strava"
	"github.com/ericfisherdev/hastrava/internal/application"
	"github.com/ericfisherdev/hastrava/internal/config"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg    *config.Config
	db     *sqliteadapter.DB
	tokens *application.TokenManager
	poller *application.PollService
	health *application.HealthService
}

// openApp opens storage and wires the token manager. withPoller also wires
// the Strava, geocode and Home Assistant adapters behind a PollService.
func openApp(ctx context.Context, cfg *config.Config, withPoller bool) (*app, error) {
	if withPoller {
		if err := cfg.RequireHomeAssistant(); err != nil {
			return nil, err
		}
	}

	// Open database (dual reader/writer with WAL mode, migrations applied).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "database opened", "path", db.Path())

	tokenStore, err := newTokenStore(cfg, db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	authorizer := stravaadapter.NewAuthorizer(cfg.StravaClientID, cfg.StravaClientSecret, cfg.RedirectURL())
	a := &app{
		cfg:    cfg,
		db:     db,
		tokens: application.NewTokenManager(tokenStore, authorizer, nil),
	}
	if !withPoller {
		return a, nil
	}

	publisher, err := haadapter.NewClient(cfg.HAURL, cfg.HAToken)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	a.poller = application.NewPollService(application.PollDeps{
		Tokens:    a.tokens,
		Strava:    stravaadapter.NewClient(),
		Geocoder:  geocodeadapter.NewClient(cfg.GeocodeAPIKey),
		Locations: sqliteadapter.NewLocationRepo(db),
		Options:   sqliteadapter.NewOptionsRepo(db),
		Publisher: publisher,
	}, cfg.Options(), cfg.PollInterval, nil)
	a.health = application.NewHealthService(a.tokens, a.poller, a.db)

	return a, nil
}

func newTokenStore(cfg *config.Config, db *sqliteadapter.DB) (driven.TokenStore, error) {
	switch cfg.TokenStorage {
	case config.TokenStorageKeyring:
		slog.Info("storing strava tokens in the system keyring", "service", keyringadapter.DefaultService)
		return keyringadapter.NewStore(keyringadapter.DefaultService), nil
	case config.TokenStorageSQLite:
		if cfg.SecretKey == nil {
			return nil, driven.ErrEncryptionKeyNotSet
		}
		return sqliteadapter.NewCredentialRepo(db, cfg.SecretKey), nil
	default:
		return nil, fmt.Errorf("%w: unknown token storage %q", config.ErrInvalid, cfg.TokenStorage)
	}
}

func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
