package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
)

func init() { Mount("/folders", registerFolders) }

func registerFolders(r chi.Router, d deps.Deps) {
	writes := r.With(mw.RateLimit(d.RateLimit))

	r.Get("/", handlers.ListFolders(d))
	r.Get("/{id}", handlers.GetFolder(d))
	writes.Post("/", handlers.CreateFolder(d))
	writes.Put("/{id}", handlers.EditFolder(d))
	writes.Delete("/{id}", handlers.DeleteFolder(d))
}
