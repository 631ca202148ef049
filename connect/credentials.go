package connect

import (
	"context"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

// userAccessToken walks the credential precedence chain and returns the
// first token it can stand behind, or nil when the session holds no usable
// credential. Order matters: a fresh authorization code shadows everything,
// a stored refresh token renews a missing access token, and a persisted
// token is only returned while it has lifetime left.
func (c *Connector) userAccessToken(ctx context.Context) *oauth2.AccessToken {
	if code := c.authorizationCode(); code != "" && code != c.record.Code() {
		token := c.exchangeCode(ctx, code)
		if token == nil {
			// the code was bogus, so everything based on it is invalid and
			// the code must never be retried
			c.record.ClearAll()
			return nil
		}
		c.record.SetCode(code)
		c.record.ClearTokenPayload()
		if token.RefreshToken != "" {
			c.record.SetRefreshToken(token.RefreshToken)
		} else {
			c.record.ClearRefreshToken()
		}
		c.record.SetAccessToken(token)
		return token
	}

	if c.record.AccessToken() == nil && c.record.RefreshToken() != "" {
		refreshToken := c.record.RefreshToken()
		raw, err := c.provider.Refresh(ctx, refreshToken)
		if err != nil {
			c.logProvider(err, "refresh")
			c.record.ClearAll()
			return nil
		}
		token, err := oauth2.ParseAccessToken(raw)
		if err != nil {
			c.logProvider(err, "refresh")
			c.record.ClearAll()
			return nil
		}

		// the refresh response does not echo the refresh token back, carry
		// it forward
		token.RefreshToken = refreshToken

		c.record.ClearCode()
		c.record.SetAccessToken(token)
		return token
	}

	if token := c.record.AccessToken(); token != nil && token.Expired(c.nowTime()) {
		c.record.ClearAll()
		return nil
	}

	// nothing explicit was present to shadow the persisted token (or the
	// inbound code matches the one already exchanged), return it as-is
	return c.record.AccessToken()
}

// exchangeCode trades an authorization code for a token. Failures are
// absorbed; the caller decides what a nil result invalidates.
func (c *Connector) exchangeCode(ctx context.Context, code string) *oauth2.AccessToken {
	if code == "" {
		return nil
	}

	redirect, err := c.ReturnURL()
	if err != nil {
		c.logProvider(err, "exchange")
		return nil
	}

	token, err := c.provider.ExchangeCode(ctx, code, redirect.String())
	if err != nil {
		// most likely the user very recently revoked authorization; either
		// way there is no access token
		c.logProvider(err, "exchange")
		return nil
	}
	if token.Validate() != nil {
		return nil
	}
	return token
}

// authorizationCode returns the inbound authorization code only when it is
// accompanied by a state value matching the stored CSRF nonce. The nonce is
// single-use: it is cleared on match, before the code is ever exchanged.
func (c *Connector) authorizationCode() string {
	state := c.requestParam("state")
	code := c.requestParam("code")
	if code == "" || state == "" || c.record.State() != state {
		return ""
	}
	c.record.ClearState() // the CSRF state has done its job
	return code
}
