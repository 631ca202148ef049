package provider

import (
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// Access types, controlling whether the provider issues a refresh token.
const (
	AccessTypeOnline  = "online"
	AccessTypeOffline = "offline"
)

// DefaultScopes are requested when no scopes are configured.
var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Config carries the provider client credentials and flow options. Invalid
// configuration is fatal at startup; it is never retried at request time.
type Config struct {
	// IssuerURL is the OIDC issuer used for endpoint discovery.
	IssuerURL string

	ClientID     string
	ClientSecret string

	// Scopes defaults to DefaultScopes when empty.
	Scopes []string

	// AccessType is AccessTypeOnline or AccessTypeOffline; empty means
	// online.
	AccessType string
}

func (c Config) Validate() error {
	if c.IssuerURL == "" {
		return errors.New("[provider.Config] issuer URL is required")
	}
	if c.ClientID == "" {
		return errors.New("[provider.Config] client id is required")
	}
	if c.ClientSecret == "" {
		return errors.New("[provider.Config] client secret is required")
	}
	switch c.AccessType {
	case "", AccessTypeOnline, AccessTypeOffline:
	default:
		return errors.Errorf("[provider.Config] access type is expected to be one of [%s, %s], but %q was given", AccessTypeOnline, AccessTypeOffline, c.AccessType)
	}
	return nil
}
