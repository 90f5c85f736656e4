package contexthelpers_test

import (
	"github.com/myrjola/reelguess/internal/contexthelpers"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSettersAndGetters(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/games/abc", nil)
	ctx := r.Context()
	require.Empty(t, contexthelpers.CurrentPath(ctx))
	require.Empty(t, contexthelpers.CSRFToken(ctx))
	require.Empty(t, contexthelpers.CSPNonce(ctx))
	require.Empty(t, contexthelpers.GameID(ctx))

	r = contexthelpers.SetCurrentPath(r, "/api/games/abc")
	r = contexthelpers.SetCSRFToken(r, "token")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	r = contexthelpers.SetGameID(r, "abc")
	ctx = r.Context()
	require.Equal(t, "/api/games/abc", contexthelpers.CurrentPath(ctx))
	require.Equal(t, "token", contexthelpers.CSRFToken(ctx))
	require.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))
	require.Equal(t, "abc", contexthelpers.GameID(ctx))
}
