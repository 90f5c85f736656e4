package main

import (
	"context"
	"slices"
)

type sessionKey string

// gamesSessionKey lists the game IDs started from a browser session.
const gamesSessionKey = sessionKey("games")

func (app *application) ownsGame(ctx context.Context, gameID string) bool {
	return slices.Contains(app.sessionGames(ctx), gameID)
}

func (app *application) sessionGames(ctx context.Context) []string {
	games, _ := app.sessionManager.Get(ctx, string(gamesSessionKey)).([]string)
	return games
}

func (app *application) addSessionGame(ctx context.Context, gameID string) {
	app.sessionManager.Put(ctx, string(gamesSessionKey), append(app.sessionGames(ctx), gameID))
}

func (app *application) removeSessionGame(ctx context.Context, gameID string) {
	games := slices.DeleteFunc(slices.Clone(app.sessionGames(ctx)), func(id string) bool { return id == gameID })
	app.sessionManager.Put(ctx, string(gamesSessionKey), games)
}
