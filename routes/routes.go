package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/formforge/formforge/app"
	"github.com/formforge/formforge/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public fill-out surface
	api.Get("/fill/{id}", PublicGetForm(app))
	api.Post("/fill/{id}/submissions", PublicSubmitForm(app))

	api.Route("/forms", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/", SaveForm(app))
		r.Get("/", ListForms(app))
		r.Get("/{id}", GetFormById(app))
		r.Put("/{id}", UpdateForm(app))
		r.Delete("/{id}", DeleteForm(app))

		r.Post("/{id}/publish", PublishForm(app))
		r.Get("/{id}/submissions", GetFormSubmissions(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
