// Package config loads the demo server's configuration from the
// environment. Validation failures are fatal at startup.
package config

import (
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Settings supports both naming styles for the provider credentials:
// OAUTH_APP_ID/OAUTH_APP_SECRET and OAUTH_CLIENT_ID/OAUTH_CLIENT_SECRET.
// Configuring both is an error.
type Settings struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"oauth-connect"`

	IssuerURL    string `env:"OAUTH_ISSUER" envDefault:"https://accounts.google.com"`
	AppID        string `env:"OAUTH_APP_ID"`
	AppSecret    string `env:"OAUTH_APP_SECRET"`
	ClientID     string `env:"OAUTH_CLIENT_ID"`
	ClientSecret string `env:"OAUTH_CLIENT_SECRET"`

	Scopes     []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
	AccessType string   `env:"OAUTH_ACCESS_TYPE" envDefault:"online"`

	// ReturnURL is the absolute URL the provider redirects back to.
	ReturnURL string `env:"OAUTH_RETURN_URL"`

	// ClearAllOnLogout clears the whole session record on logout instead of
	// only the credential fields.
	ClearAllOnLogout bool `env:"OAUTH_CLEAR_ALL_ON_LOGOUT" envDefault:"true"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// RedisAddr switches session storage from in-memory to Redis when set.
	RedisAddr string `env:"REDIS_ADDR"`
}

func Load() (*Settings, error) {
	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return nil, errors.Wrap(err, "[config.Load] parse environment")
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) validate() error {
	if (s.AppID != "" || s.AppSecret != "") && (s.ClientID != "" || s.ClientSecret != "") {
		return errors.New("[config] use only one syntax, either OAUTH_APP_ID/OAUTH_APP_SECRET or OAUTH_CLIENT_ID/OAUTH_CLIENT_SECRET, do not combine them")
	}
	id, secret := s.Credentials()
	if id == "" || secret == "" {
		return errors.New("[config] provider client credentials are required")
	}
	if s.ReturnURL == "" {
		return errors.New("[config] OAUTH_RETURN_URL is required")
	}
	return nil
}

// Credentials returns the client id and secret regardless of which naming
// style was configured.
func (s *Settings) Credentials() (string, string) {
	if s.AppID != "" || s.AppSecret != "" {
		return s.AppID, s.AppSecret
	}
	return s.ClientID, s.ClientSecret
}
