// Package connect manages the relying-party side of an OAuth2 Authorization
// Code + OpenID Connect flow: it derives the current access token across
// code exchange, refresh and the persisted session, resolves a stable user
// identity, and keeps both invalidated together with the session.
package connect

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
	"github.com/oauthconnect/go-oauth-connect/session"
)

// Connector ties one inbound request to one browser session. It memoizes the
// resolved access token and user id for the request's duration, so construct
// a fresh Connector per request.
type Connector struct {
	provider Provider
	store    session.Storage
	record   *session.Record
	links    LinkBuilder
	request  RequestSource
	dest     Destination
	log      zerolog.Logger
	nowTime  func() time.Time

	// accessToken is the memoized resolution result; nil means not yet
	// determined for this request.
	accessToken *oauth2.AccessToken

	// userID is the memoized identity; nil means not yet determined, the
	// empty string means logged out.
	userID *string
}

// Option modifies a Connector at construction time.
type Option func(*Connector)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Connector) {
		c.nowTime = nowFunc
	}
}

// WithLogger sets the diagnostics sink. Logging never affects control flow.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Connector) {
		c.log = log
	}
}

// WithLinkBuilder supplies the router capability, required when the return
// destination is a symbolic endpoint.
func WithLinkBuilder(links LinkBuilder) Option {
	return func(c *Connector) {
		c.links = links
	}
}

// New initializes a Connector for a single request.
func New(provider Provider, store session.Storage, request RequestSource, dest Destination, options ...Option) (*Connector, error) {
	if provider == nil {
		return nil, errors.New("[connect.New] provider is required")
	}
	if store == nil {
		return nil, errors.New("[connect.New] session storage is required")
	}
	if request == nil {
		return nil, errors.New("[connect.New] request source is required")
	}
	if !dest.configured() {
		return nil, errors.Wrap(InvalidDestinationErr, "[connect.New] return destination is required")
	}

	connector := &Connector{
		provider: provider,
		store:    store,
		record:   session.NewRecord(store),
		request:  request,
		dest:     dest,
		log:      zerolog.Nop(),
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(connector)
	}

	if dest.needsLinkBuilder() && connector.links == nil {
		return nil, errors.Wrap(InvalidDestinationErr, "[connect.New] symbolic destinations require a link builder")
	}

	return connector, nil
}

// AccessToken determines the token that should be used for API calls. The
// first call walks the credential precedence chain; subsequent calls within
// the same request return whatever the first call produced. A nil result
// means no credential is available and the caller should treat the session
// as logged out.
func (c *Connector) AccessToken(ctx context.Context) *oauth2.AccessToken {
	if c.accessToken == nil {
		if token := c.userAccessToken(ctx); token != nil {
			if err := c.SetAccessToken(token); err != nil {
				c.logProvider(err, "resolve")
				return nil
			}
		}
	}
	return c.accessToken
}

// AccessTokenField looks up a single field of the resolved token by its wire
// name.
func (c *Connector) AccessTokenField(ctx context.Context, key string) (string, bool) {
	token := c.AccessToken(ctx)
	if token == nil {
		return "", false
	}
	return token.Field(key)
}

// SetAccessToken installs a token obtained out-of-band. The token must carry
// an access_token field; a refresh token, when present, is persisted
// separately so it outlives the access token. This is the one entry point
// whose validation errors surface to the caller.
func (c *Connector) SetAccessToken(token *oauth2.AccessToken) error {
	if err := token.Validate(); err != nil {
		return errors.Wrap(err, "[Connector.SetAccessToken]")
	}
	if token.RefreshToken != "" {
		c.record.SetRefreshToken(token.RefreshToken)
	}
	c.accessToken = token
	return nil
}

// SetAccessTokenJSON parses a serialized token and installs it.
func (c *Connector) SetAccessTokenJSON(data []byte) error {
	token, err := oauth2.ParseAccessToken(data)
	if err != nil {
		return errors.Wrap(err, "[Connector.SetAccessTokenJSON]")
	}
	return c.SetAccessToken(token)
}

// RefreshToken returns the stored refresh token, which may outlive the
// access token it was issued with.
func (c *Connector) RefreshToken() string {
	return c.record.RefreshToken()
}

func (c *Connector) SetRefreshToken(token string) {
	c.record.SetRefreshToken(token)
}

// Profile fetches the provider's userinfo document for the current token.
func (c *Connector) Profile(ctx context.Context) (*oauth2.Profile, error) {
	token := c.AccessToken(ctx)
	if token == nil {
		return nil, errors.Wrap(NoAccessTokenErr, "[Connector.Profile]")
	}
	profile, err := c.provider.FetchProfile(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "[Connector.Profile] userinfo")
	}
	return profile, nil
}

// AuthorizationURL builds the provider consent URL for a fresh login,
// planting a single-use CSRF state nonce in the session.
func (c *Connector) AuthorizationURL() (string, error) {
	redirect, err := c.ReturnURL()
	if err != nil {
		return "", errors.Wrap(err, "[Connector.AuthorizationURL]")
	}
	state := uuid.New().String()
	c.record.SetState(state)
	return c.provider.AuthCodeURL(state, redirect.String()), nil
}

// ReturnURL computes the URL used both as the OAuth redirect_uri and as the
// post-login landing destination.
func (c *Connector) ReturnURL() (*url.URL, error) {
	return c.dest.resolve(c.links)
}

// DestroySession logs the user out: the in-memory token and identity caches
// are dropped together with every persisted session field.
func (c *Connector) DestroySession() {
	c.accessToken = nil
	c.userID = nil
	c.record.ClearAll()
}

// requestParam reads an inbound parameter, POST body first, then the query
// string.
func (c *Connector) requestParam(name string) string {
	if value := c.request.PostParam(name); value != "" {
		return value
	}
	return c.request.QueryParam(name)
}

func (c *Connector) logProvider(err error, op string) {
	c.log.Err(err).Str("channel", "oauth").Str("op", op).Msg("provider call failed")
}
