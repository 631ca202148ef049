package memstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthconnect/go-oauth-connect/session/memstore"
)

func TestRoundTripAndClearAll(t *testing.T) {
	store := memstore.New()

	_, ok := store.Get("code")
	require.False(t, ok)

	store.Set("code", "abc")
	store.Set("state", "xyz")
	require.Equal(t, 2, store.Len())

	value, ok := store.Get("code")
	require.True(t, ok)
	require.Equal(t, "abc", value)

	store.Delete("state")
	_, ok = store.Get("state")
	require.False(t, ok)

	store.ClearAll()
	require.Equal(t, 0, store.Len())
}
