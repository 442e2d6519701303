package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
)

func init() { Mount("/links", registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	writes := r.With(mw.RateLimit(d.RateLimit))

	r.Get("/", handlers.ListLinks(d))
	r.Get("/{id}", handlers.GetLink(d))
	writes.Post("/", handlers.CreateLink(d))
	writes.Put("/{id}", handlers.UpdateLink(d))
	writes.Delete("/{id}", handlers.DeleteLink(d))
	writes.Post("/{id}/status", handlers.SetLinkStatus(d))
}
