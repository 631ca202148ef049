package provider

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	xoauth2 "golang.org/x/oauth2"
)

var frozenNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func testClient() *Client {
	return &Client{nowTime: func() time.Time { return frozenNow }}
}

func TestExpiresInPrefersWireValue(t *testing.T) {
	c := testClient()

	token := &xoauth2.Token{ExpiresIn: 900, Expiry: frozenNow.Add(5 * time.Minute)}
	require.Equal(t, int64(900), c.expiresIn(token))
}

func TestExpiresInFallsBackToExpiry(t *testing.T) {
	c := testClient()

	token := &xoauth2.Token{Expiry: frozenNow.Add(10 * time.Minute)}
	require.Equal(t, int64(600), c.expiresIn(token))
}

func TestExpiresInFallsBackToJWTExpClaim(t *testing.T) {
	c := testClient()

	raw := signedJWT(t, jwt.MapClaims{
		"sub": "u1",
		"exp": frozenNow.Add(15 * time.Minute).Unix(),
	})
	token := &xoauth2.Token{AccessToken: raw}
	require.Equal(t, int64(900), c.expiresIn(token))
}

func TestExpiresInZeroWhenNothingIsKnown(t *testing.T) {
	c := testClient()

	require.Equal(t, int64(0), c.expiresIn(&xoauth2.Token{AccessToken: "opaque"}))

	raw := signedJWT(t, jwt.MapClaims{"sub": "u1"}) // no exp claim
	require.Equal(t, int64(0), c.expiresIn(&xoauth2.Token{AccessToken: raw}))
}

func TestAccessTokenConversionStampsIssueTime(t *testing.T) {
	c := testClient()

	wire := (&xoauth2.Token{
		AccessToken:  "T1",
		RefreshToken: "R1",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}).WithExtra(map[string]any{"id_token": "I1", "scope": "openid email"})

	converted := c.accessToken(wire)

	require.Equal(t, "T1", converted.AccessToken)
	require.Equal(t, "R1", converted.RefreshToken)
	require.Equal(t, "I1", converted.IDToken)
	require.Equal(t, "openid email", converted.Scope)
	require.Equal(t, frozenNow.Unix(), converted.Created)
	require.Equal(t, int64(3600), converted.ExpiresIn)
}
