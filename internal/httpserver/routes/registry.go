package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	prefix string
	reg    Registrar
	mws    []Middleware
}

var registry []entry

// Register adds a registrar mounted at the API root. Route files call it from init().
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// Mount adds a registrar whose paths are relative to prefix, e.g. "/links".
func Mount(prefix string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{prefix: prefix, reg: reg, mws: mws})
}

// RegisterAll wires every registrar into r. Called once from the server.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if e.prefix == "" {
			e.reg(r.With(e.mws...), d)
			continue
		}
		r.Route(e.prefix, func(sub chi.Router) {
			sub.Use(e.mws...)
			e.reg(sub, d)
		})
	}
}
