package connect_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthconnect/go-oauth-connect/connect"
)

func TestHTTPRequestReadsPostThenQuery(t *testing.T) {
	r := httptest.NewRequest("POST", "/oauth-callback?code=query-code&state=query-state", strings.NewReader("code=post-code"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	source := connect.NewHTTPRequest(r)

	require.Equal(t, "post-code", source.PostParam("code"))
	require.Equal(t, "query-code", source.QueryParam("code"))
	require.Empty(t, source.PostParam("state"))
	require.Equal(t, "query-state", source.QueryParam("state"))
}
