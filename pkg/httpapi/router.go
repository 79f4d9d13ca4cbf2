// Package httpapi implements SPEC_FULL.md §4.13: the chi router and
// middleware chain that fronts the orchestrator core, and the three
// mutating handlers that spawn a detached orchestration and return 202
// without awaiting it (spec §4.8, §5).
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/metrics"
)

// Server holds the application handle behind the HTTP handlers.
type Server struct {
	app app.App
}

// NewRouter builds the full middleware chain and route table (spec
// §4.13): request-id, recover, logging, CORS, then bearer auth scoped
// to every route except /register and /login.
func NewRouter(a app.App) http.Handler {
	s := &Server{app: a}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoverer)
	r.Use(requestLogging)
	r.Use(corsMiddleware(a.Config.CORS))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBearer(a.Tokens))

		r.Get("/user/me", s.handleMe)
		r.Get("/servers", s.handleListServers)
		r.Post("/servers", s.handleCreateServer)
		r.Get("/servers/{id}", s.handleGetServer)
		r.Delete("/servers/{id}", s.handleDeleteServer)
		r.Post("/servers/{id}/actions", s.handleServerAction)
	})

	return r
}
