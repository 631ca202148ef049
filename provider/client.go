// Package provider implements the connect.Provider capability on top of
// OIDC discovery (coreos/go-oidc) and the standard OAuth2 client
// (golang.org/x/oauth2).
package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	xoauth2 "golang.org/x/oauth2"

	"github.com/oauthconnect/go-oauth-connect/connect"
	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

var _ connect.Provider = (*Client)(nil)

// Client is safe for use across requests; it holds no per-session state.
type Client struct {
	provider    *oidc.Provider
	verifier    *oidc.IDTokenVerifier
	oauthConfig *xoauth2.Config
	accessType  xoauth2.AuthCodeOption
	nowTime     func() time.Time
}

type Option func(*Client)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New discovers the issuer's endpoints and builds a provider client. The
// context bounds discovery only; request contexts bound the individual calls.
func New(ctx context.Context, cfg Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[provider.New] discovery for issuer %q", cfg.IssuerURL)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	accessType := xoauth2.AccessTypeOnline
	if cfg.AccessType == AccessTypeOffline {
		accessType = xoauth2.AccessTypeOffline
	}

	client := &Client{
		provider: oidcProvider,
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauthConfig: &xoauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       scopes,
		},
		accessType: accessType,
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (c *Client) AuthCodeURL(state, redirectURI string) string {
	return c.redirected(redirectURI).AuthCodeURL(state, c.accessType)
}

func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.AccessToken, error) {
	token, err := c.redirected(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode] exchange")
	}
	return c.accessToken(token), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) ([]byte, error) {
	token, err := c.oauthConfig.TokenSource(ctx, &xoauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh] token source")
	}
	data, err := json.Marshal(c.accessToken(token))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh] marshal token")
	}
	return data, nil
}

func (c *Client) VerifyIDToken(ctx context.Context, token *oauth2.AccessToken) (oauth2.Claims, error) {
	if token == nil || token.IDToken == "" {
		return nil, nil
	}
	idToken, err := c.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyIDToken] verify")
	}
	claims := oauth2.Claims{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyIDToken] decode claims")
	}
	return claims, nil
}

func (c *Client) FetchProfile(ctx context.Context, token *oauth2.AccessToken) (*oauth2.Profile, error) {
	if err := token.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile]")
	}
	source := xoauth2.StaticTokenSource(&xoauth2.Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
	info, err := c.provider.UserInfo(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] userinfo")
	}
	profile := &oauth2.Profile{
		ID:    info.Subject,
		Email: info.Email,
	}
	// name/picture claims are optional extras, failure to decode them is not
	// an error
	_ = info.Claims(profile)
	profile.ID = info.Subject
	return profile, nil
}

// redirected clones the base config with a per-call redirect URI.
func (c *Client) redirected(redirectURI string) *xoauth2.Config {
	cfg := *c.oauthConfig
	cfg.RedirectURL = redirectURI
	return &cfg
}

// accessToken converts the library token to the persisted wire form,
// stamping the issue time so local expiry checks work.
func (c *Client) accessToken(token *xoauth2.Token) *oauth2.AccessToken {
	converted := &oauth2.AccessToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Created:      c.nowTime().Unix(),
		ExpiresIn:    c.expiresIn(token),
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		converted.IDToken = idToken
	}
	if scope, ok := token.Extra("scope").(string); ok {
		converted.Scope = scope
	}
	return converted
}

// expiresIn recovers the token lifetime. Some endpoints omit expires_in from
// the response; fall back to the computed expiry, then to the exp claim of a
// JWT-shaped access token.
func (c *Client) expiresIn(token *xoauth2.Token) int64 {
	if token.ExpiresIn > 0 {
		return token.ExpiresIn
	}
	if !token.Expiry.IsZero() {
		return int64(token.Expiry.Sub(c.nowTime()).Seconds())
	}
	return jwtLifetime(token.AccessToken, c.nowTime())
}

// jwtLifetime reads the unverified exp claim; the token came from the
// provider over TLS, it is not being trusted for anything but a lifetime
// hint.
func jwtLifetime(raw string, now time.Time) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return int64(exp.Sub(now).Seconds())
}
