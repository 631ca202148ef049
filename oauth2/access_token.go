package oauth2

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ExpiryMargin is subtracted from a token's lifetime before the expiry check,
// absorbing clock skew and network latency between us and the provider.
const ExpiryMargin = 30

var MissingAccessTokenErr = errors.New("token requires an 'access_token' field")

// AccessToken is the credential returned by the provider's token endpoint.
// It is the unit persisted into the session store and handed to API calls.
// Created and ExpiresIn are optional; a token without them is never treated
// as expired locally.
type AccessToken struct {
	// AccessToken is the bearer credential itself. Required.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential used to renew the access
	// token without user interaction. Only issued for offline access.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the raw OpenID Connect ID token, when the openid scope
	// was granted. Verified lazily, never parsed here.
	IDToken string `json:"id_token,omitempty"`

	// TokenType is "Bearer" for every provider this package targets.
	TokenType string `json:"token_type,omitempty"`

	// Scope is the space-separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// Created is the epoch second the token was issued at.
	Created int64 `json:"created,omitempty"`

	// ExpiresIn is the token lifetime in seconds from Created.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

// ParseAccessToken decodes a serialized token and validates it.
func ParseAccessToken(data []byte) (*AccessToken, error) {
	var token AccessToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, errors.Wrap(err, "[ParseAccessToken] invalid token json")
	}
	if err := token.Validate(); err != nil {
		return nil, err
	}
	return &token, nil
}

// Validate checks the invariant that every usable token carries the
// access_token field.
func (t *AccessToken) Validate() error {
	if t == nil || t.AccessToken == "" {
		return MissingAccessTokenErr
	}
	return nil
}

// Expired reports whether the token's lifetime, minus the safety margin, has
// elapsed. Tokens without issue/lifetime metadata never expire locally.
func (t *AccessToken) Expired(now time.Time) bool {
	if t.Created == 0 || t.ExpiresIn == 0 {
		return false
	}
	return t.Created+(t.ExpiresIn-ExpiryMargin) < now.Unix()
}

// JSON serializes the token for persistence.
func (t *AccessToken) JSON() []byte {
	data, _ := json.Marshal(t)
	return data
}

// Field looks up a single token field by its wire name, for callers that
// address token contents by key.
func (t *AccessToken) Field(key string) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(t.JSON(), &fields); err != nil {
		return "", false
	}
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}
