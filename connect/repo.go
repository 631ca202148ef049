package connect

import (
	"context"
	"net/url"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

// Provider is the identity-provider capability the connector depends on. It
// owns the wire protocol, its own timeouts, and ID-token cryptography; the
// connector only sequences the calls. Every method is a single attempt with
// no internal retry.
type Provider interface {
	// AuthCodeURL builds the consent-screen URL for a new login attempt.
	AuthCodeURL(state, redirectURI string) string

	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.AccessToken, error)

	// Refresh obtains a new access token and returns it in its serialized
	// wire form.
	Refresh(ctx context.Context, refreshToken string) ([]byte, error)

	// VerifyIDToken checks the signature and claims of the token's ID token
	// and returns the verified payload.
	VerifyIDToken(ctx context.Context, token *oauth2.AccessToken) (oauth2.Claims, error)

	// FetchProfile calls the provider's userinfo endpoint.
	FetchProfile(ctx context.Context, token *oauth2.AccessToken) (*oauth2.Profile, error)
}

// LinkBuilder resolves symbolic endpoint destinations against the hosting
// application's router.
type LinkBuilder interface {
	// Resolve builds an absolute URL for a named endpoint.
	Resolve(endpoint string, positional []string, named map[string]string) (*url.URL, error)

	// CurrentPersistentParams returns the persistent parameter defaults of
	// the current request's UI ancestry, merged into resolved links so
	// deep-link state survives the redirect round trip.
	CurrentPersistentParams() map[string]string
}

// RequestSource exposes the inbound request's parameters. POST values take
// precedence over the query string.
type RequestSource interface {
	PostParam(name string) string
	QueryParam(name string) string
}
