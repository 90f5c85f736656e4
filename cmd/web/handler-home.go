package main

import (
	"net/http"
)

type homeTemplateData struct {
	Movies int
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	count, err := app.movies.CountMovies(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "home", homeTemplateData{Movies: count})
}
