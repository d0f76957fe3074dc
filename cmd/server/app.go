package main

import (
	"net/http"

	"github.com/diewo77/scam-catalog/auth"
	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/internal/policy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	// Global middleware: language first so auth errors are translated.
	sessions := auth.Middleware(routerCfg.Sessions, routerCfg.Store, routerCfg.FreeTrial, routerCfg.Logger)
	app.handler = httpx.Language(sessions(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ah := a.routerCfg.AuthHandler
	ch := a.routerCfg.CaseHandler
	aph := a.routerCfg.AdminProfileHandler
	apo := a.routerCfg.AdminPolicyHandler

	// Public
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /me", ah.Me)

	a.mux.HandleFunc("GET /cases", ch.List)
	a.mux.HandleFunc("GET /cases/{id}", ch.View)
	a.mux.HandleFunc("POST /cases", ch.Create)

	// Authenticated
	a.mux.Handle("POST /cases/{id}/unlock", auth.RequireAuth(http.HandlerFunc(ch.Unlock)))

	// Staff
	a.mux.Handle("GET /cases/pending", auth.RequireStaff(http.HandlerFunc(ch.Pending)))
	a.mux.Handle("POST /cases/{id}/identifiers", auth.RequireStaff(http.HandlerFunc(ch.AddIdentifier)))
	a.mux.Handle("POST /cases/{id}/custom-fields", auth.RequireStaff(http.HandlerFunc(ch.AddCustomField)))
	a.mux.Handle("DELETE /cases/{id}/related/{other}", auth.RequireStaff(http.HandlerFunc(ch.Unlink)))
	a.mux.Handle("POST /identifiers/{id}", auth.RequireStaff(http.HandlerFunc(ch.UpdateIdentifier)))
	a.mux.Handle("POST /cases/{id}/approve", auth.RequireStaff(http.HandlerFunc(ch.Approve)))
	a.mux.Handle("POST /cases/{id}/reject", auth.RequireStaff(http.HandlerFunc(ch.Reject)))
	a.mux.Handle("POST /profiles", auth.RequireStaff(http.HandlerFunc(aph.Create)))
	a.mux.Handle("GET /profiles/{id}/aggregate", auth.RequireStaff(http.HandlerFunc(aph.Aggregate)))
	a.mux.Handle("GET /policies", auth.RequireStaff(http.HandlerFunc(apo.List)))
	a.mux.Handle("PUT /policies/{entity}/{field}", auth.RequireStaff(http.HandlerFunc(apo.Set)))

	a.mux.Handle("GET /metrics", promhttp.Handler())
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}
