package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger))

	admin.Get("/infra", handlers.Infra(d))
	admin.Get("/verify", handlers.Verify(d))
	admin.Post("/verify", handlers.Repair(d))
	admin.Post("/reload", handlers.Reload(d))
}
