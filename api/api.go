// Package api exposes the customer-account workflows over HTTP: the
// password-recovery verification flow, the reset-password step that consumes
// it, and minimal login/logout.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/kmercer/storegate/recovery"
	"github.com/kmercer/storegate/storage"
)

// API holds the dependencies needed by the HTTP handlers.
type API struct {
	repo     storage.Repository
	flow     *recovery.Flow
	sessions SessionStore
	audit    *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithSessionStore overrides the default in-memory session store.
func WithSessionStore(store SessionStore) Option {
	return func(a *API) {
		a.sessions = store
	}
}

// WithFlow overrides the default recovery flow, letting callers adjust the
// reset window or the clock.
func WithFlow(flow *recovery.Flow) Option {
	return func(a *API) {
		a.flow = flow
	}
}

// New creates a new API instance over the given account repository.
func New(repo storage.Repository, opts ...Option) *API {
	a := &API{repo: repo}
	for _, opt := range opts {
		opt(a)
	}
	if a.flow == nil {
		a.flow = recovery.NewFlow(repo)
	}
	if a.sessions == nil {
		a.sessions = NewMemorySessionStore()
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Get("/account/recovery", a.RecoveryState)
	r.Post("/account/recovery", a.Recovery)
	r.Post("/account/reset-password", a.ResetPassword)
	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)

	return r
}
