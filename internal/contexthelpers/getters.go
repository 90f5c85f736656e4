package contexthelpers

import (
	"context"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// GameID returns the game addressed by the request or "" outside the game routes.
func GameID(ctx context.Context) string {
	gameID, ok := ctx.Value(gameIDContextKey).(string)
	if !ok {
		return ""
	}

	return gameID
}
