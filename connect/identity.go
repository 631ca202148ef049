package connect

import (
	"context"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

// User returns the provider-side id of the connected user, or the empty
// string when nobody is logged in. The result is memoized for the request.
func (c *Connector) User(ctx context.Context) string {
	if c.userID == nil {
		id := c.userFromAvailableData(ctx)
		c.userID = &id
	}
	return *c.userID
}

// IDTokenClaims exposes the verified ID-token payload once a user is
// connected.
func (c *Connector) IDTokenClaims(ctx context.Context) oauth2.Claims {
	if c.User(ctx) == "" {
		return nil
	}
	return c.verifiedIDToken(ctx)
}

// userFromAvailableData derives the identity from the freshest source: the
// cached user id is reused only while the persisted token still matches the
// resolved one; otherwise the identity is re-derived and re-cached. A failed
// derivation invalidates the whole session, not just the identity cache.
func (c *Connector) userFromAvailableData(ctx context.Context) string {
	userID := c.record.UserID()

	token := c.AccessToken(ctx)
	if token == nil {
		return userID
	}
	if userID != "" && tokensEqual(c.record.AccessToken(), token) {
		return userID
	}

	id := c.userFromAccessToken(ctx)
	if id == "" {
		c.record.ClearAll()
		return ""
	}
	c.record.SetUserID(id)
	return id
}

// userFromAccessToken derives the identity for the already-resolved token:
// verified ID-token claims when available, the userinfo endpoint otherwise.
// Every failure degrades to "no user" rather than propagating.
func (c *Connector) userFromAccessToken(ctx context.Context) string {
	claims := c.verifiedIDToken(ctx)
	if claims == nil {
		profile, err := c.provider.FetchProfile(ctx, c.accessToken)
		if err != nil {
			c.logProvider(err, "identity")
			return ""
		}
		return profile.ID
	}
	return claims.Subject()
}

// verifiedIDToken returns the verified claims for the current token, or nil
// when there is no token, the token carries no ID token, or verification
// failed. Both outcomes are cached in the session so verification runs at
// most once per distinct token.
func (c *Connector) verifiedIDToken(ctx context.Context) oauth2.Claims {
	token := c.AccessToken(ctx)
	if token == nil || token.IDToken == "" {
		return nil
	}

	if claims, attempted := c.record.TokenPayload(); attempted {
		return claims
	}

	claims, err := c.provider.VerifyIDToken(ctx, token)
	if err != nil || claims == nil {
		if err != nil {
			c.logProvider(err, "verify")
		}
		c.record.SetTokenPayload(nil)
		return nil
	}
	c.record.SetTokenPayload(claims)
	return claims
}

func tokensEqual(a, b *oauth2.AccessToken) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
