package connect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthconnect/go-oauth-connect/oauth2"
)

func tokenWithIDToken(accessToken string) *oauth2.AccessToken {
	return &oauth2.AccessToken{AccessToken: accessToken, IDToken: "raw-id-token"}
}

func TestUserWithoutAnyCredentialIsLoggedOut(t *testing.T) {
	f := setupTestFixture(t)

	require.Empty(t, f.connector.User(context.Background()))
	require.Equal(t, 0, f.provider.VerifyCalls)
	require.Equal(t, 0, f.provider.ProfileCalls)
}

func TestUserFromVerifiedClaimsSubject(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(tokenWithIDToken("T1"))
	f.provider.Claims = oauth2.Claims{"sub": "12345", "email": "jane@example.com"}

	require.Equal(t, "12345", f.connector.User(context.Background()))

	// the identity is cached against the resolving token
	require.Equal(t, "12345", f.record.UserID())
	require.Equal(t, 0, f.provider.ProfileCalls)

	// a followup request with the same persisted token reuses the cache
	// without touching the provider
	followup := newConnector(t, f.provider, f.store, f.request)
	require.Equal(t, "12345", followup.User(context.Background()))
	require.Equal(t, 1, f.provider.VerifyCalls)
	require.Equal(t, 0, f.provider.ProfileCalls)
}

func TestUserClaimsMissingSubIsNoUserWithoutProfileFallback(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(tokenWithIDToken("T1"))
	f.provider.Claims = oauth2.Claims{"email": "jane@example.com"}
	f.provider.Profile = &oauth2.Profile{ID: "should-not-be-used"}

	require.Empty(t, f.connector.User(context.Background()))
	require.Equal(t, 0, f.provider.ProfileCalls)

	// a failed derivation invalidates the whole session
	require.Equal(t, 0, f.store.Len())
}

func TestUserFallsBackToProfileWhenNoIDToken(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(token("T1"))
	f.provider.Profile = &oauth2.Profile{ID: "u1", Email: "jane@example.com"}

	require.Equal(t, "u1", f.connector.User(context.Background()))
	require.Equal(t, 0, f.provider.VerifyCalls)
	require.Equal(t, "u1", f.record.UserID())
}

func TestProfileFailureDegradesToLoggedOut(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(token("T1"))
	f.provider.ProfileErr = errors.New("userinfo unavailable")

	require.Empty(t, f.connector.User(context.Background()))
	require.Equal(t, 0, f.store.Len())
}

func TestVerificationFailureIsCachedAndFallsBackToProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(tokenWithIDToken("T1"))
	f.provider.VerifyErr = errors.New("signature mismatch")
	f.provider.Profile = &oauth2.Profile{ID: "u9"}

	require.Equal(t, "u9", f.connector.User(context.Background()))
	require.Equal(t, 1, f.provider.VerifyCalls)
	require.Equal(t, 1, f.provider.ProfileCalls)

	// the failed verification is recorded so it never runs again for this
	// token
	claims, attempted := f.record.TokenPayload()
	require.Nil(t, claims)
	require.True(t, attempted)

	require.Nil(t, f.connector.IDTokenClaims(context.Background()))
	require.Equal(t, 1, f.provider.VerifyCalls)
}

func TestCachedUserIsReturnedWithoutTokenAvailable(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetUserID("u1")

	require.Equal(t, "u1", f.connector.User(context.Background()))
	require.Equal(t, 0, f.provider.VerifyCalls)
	require.Equal(t, 0, f.provider.ProfileCalls)
}

func TestOutOfBandTokenTriggersIdentityRederivation(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetUserID("old-user")
	f.record.SetAccessToken(token("T0"))
	f.provider.Profile = &oauth2.Profile{ID: "new-user"}

	require.NoError(t, f.connector.SetAccessToken(token("T1")))

	require.Equal(t, "new-user", f.connector.User(context.Background()))
	require.Equal(t, "new-user", f.record.UserID())
}

func TestFreshExchangeReusesCachedIdentity(t *testing.T) {
	// a fresh exchange persists the new token before the identity check
	// runs, so an existing cached identity is kept rather than re-derived
	f := setupTestFixture(t)
	f.record.SetUserID("u1")
	f.record.SetState(testState)
	f.inboundCallback(testCode, testState)
	f.provider.ExchangeToken = token("T1")

	require.Equal(t, "u1", f.connector.User(context.Background()))
	require.Equal(t, 0, f.provider.VerifyCalls)
	require.Equal(t, 0, f.provider.ProfileCalls)
}

func TestIDTokenClaimsRequireConnectedUser(t *testing.T) {
	f := setupTestFixture(t)

	require.Nil(t, f.connector.IDTokenClaims(context.Background()))

	f.record.SetAccessToken(tokenWithIDToken("T1"))
	f.provider.Claims = oauth2.Claims{"sub": "12345", "email": "jane@example.com"}

	// the logged-out result above is memoized for the request, so the token
	// only becomes visible to a followup request
	followup := newConnector(t, f.provider, f.store, f.request)
	claims := followup.IDTokenClaims(context.Background())
	require.NotNil(t, claims)
	require.Equal(t, "jane@example.com", claims.String("email"))
}

func TestUserIsMemoizedPerRequest(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetAccessToken(token("T1"))
	f.provider.Profile = &oauth2.Profile{ID: "u1"}

	require.Equal(t, "u1", f.connector.User(context.Background()))
	require.Equal(t, "u1", f.connector.User(context.Background()))
	require.Equal(t, 1, f.provider.ProfileCalls)
}

func TestLoginRoundTripResolvesIdentityThroughProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.record.SetState(testState)
	f.inboundCallback(testCode, testState)
	f.provider.ExchangeToken = &oauth2.AccessToken{AccessToken: "T1", RefreshToken: "R1"}
	f.provider.Profile = &oauth2.Profile{ID: "u1"}

	require.Equal(t, "u1", f.connector.User(context.Background()))

	require.Equal(t, "u1", f.record.UserID())
	require.Equal(t, "R1", f.record.RefreshToken())
	require.Equal(t, testCode, f.record.Code())
	require.Empty(t, f.record.State())
	require.Equal(t, 0, f.provider.VerifyCalls)
	require.Equal(t, 1, f.provider.ProfileCalls)
}

func TestProfileRequiresResolvedToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.connector.Profile(context.Background())
	require.Error(t, err)

	f.record.SetAccessToken(token("T1"))
	f.provider.Profile = &oauth2.Profile{ID: "u1", Name: "Jane"}

	profile, err := f.connector.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", profile.ID)
	require.Equal(t, "Jane", profile.Name)
}
