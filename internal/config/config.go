// Package config loads application configuration from defaults, an optional
// TOML file and HASTRAVA_ environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
	"github.com/ericfisherdev/hastrava/internal/validation"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HASTRAVA_"

// Token storage backends.
const (
	TokenStorageSQLite  = "sqlite"
	TokenStorageKeyring = "keyring"
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	StravaClientID     string        `koanf:"strava_client_id" validate:"required"`
	StravaClientSecret string        `koanf:"strava_client_secret" validate:"required"`
	HAURL              string        `koanf:"ha_url" validate:"omitempty,url"`
	HAToken            string        `koanf:"ha_token"`
	PollInterval       time.Duration `koanf:"poll_interval" validate:"gte=1m"`
	SlotCount          int           `koanf:"slot_count"`
	UnitSystem         string        `koanf:"unit_system" validate:"oneof=metric imperial"`
	KPIs               []string      `koanf:"kpis" validate:"omitempty,len=5,dive,kpi"`
	Geocode            bool          `koanf:"geocode"`
	GeocodeAPIKey      string        `koanf:"geocode_api_key"`
	ListenAddr         string        `koanf:"listen_addr" validate:"required,hostname_port"`
	PublicURL          string        `koanf:"public_url" validate:"omitempty,url"`
	DBPath             string        `koanf:"db_path" validate:"required"`
	SecretKeyHex       string        `koanf:"secret_key" validate:"omitempty,hexadecimal,len=64"`
	TokenStorage       string        `koanf:"token_storage" validate:"oneof=sqlite keyring"`

	// SecretKey is the decoded 32-byte AES-256 key, nil when secret_key is unset.
	SecretKey []byte `koanf:"-"`
}

// defaults are loaded before the file and environment layers.
var defaults = map[string]any{
	"poll_interval": "10m",
	"slot_count":    model.MaxSlots,
	"unit_system":   string(model.UnitSystemMetric),
	"geocode":       true,
	"listen_addr":   "127.0.0.1:8080",
	"db_path":       "hastrava.db",
	"token_storage": TokenStorageSQLite,
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and environment variables from environ, in that order of
// precedence. environ defaults to os.Environ when nil.
func Load(path string, environ func() []string) (*Config, error) {
	if environ == nil {
		environ = os.Environ
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			if key == "kpis" {
				return key, splitList(value)
			}
			return key, value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := validate(&cfg); err != nil {
		if cfg.StravaClientID == "" || cfg.StravaClientSecret == "" {
			return nil, fmt.Errorf("%w: %w", driven.ErrMisconfigured, err)
		}
		return nil, err
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("%w: %sSECRET_KEY is not valid hex: %w", ErrInvalid, EnvPrefix, err)
		}
		cfg.SecretKey = key
	}

	return &cfg, nil
}

// RequireHomeAssistant reports an error when the Home Assistant connection is
// not configured. Only commands that publish sensors need it.
func (c *Config) RequireHomeAssistant() error {
	var missing []string
	if c.HAURL == "" {
		missing = append(missing, EnvPrefix+"HA_URL")
	}
	if c.HAToken == "" {
		missing = append(missing, EnvPrefix+"HA_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// RedirectURL is the OAuth callback URL registered with Strava.
func (c *Config) RedirectURL() string {
	base := c.PublicURL
	if base == "" {
		base = "http://" + c.ListenAddr
	}
	return strings.TrimSuffix(base, "/") + "/auth/callback"
}

// Options returns the sensor options seeded from configuration.
func (c *Config) Options() model.Options {
	opts := model.Options{
		SlotCount:  c.SlotCount,
		UnitSystem: model.UnitSystem(c.UnitSystem),
		KPIs:       model.DefaultKPIs,
		Geocode:    c.Geocode,
	}
	if len(c.KPIs) == model.KPIsPerSlot {
		for i, k := range c.KPIs {
			opts.KPIs[i] = model.KPI(k)
		}
	}
	return opts.Normalized()
}

var validate = func() func(*Config) error {
	v := validation.New()

	// Report fields by their environment variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return EnvPrefix + strings.ToUpper(name)
	})

	return func(cfg *Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
}()

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "len":
		return fmt.Sprintf("%s must have length %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
