package main

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}

// healthy responds with a JSON object indicating that the server is healthy and how many games are running.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Games: app.games.Len()})
}
