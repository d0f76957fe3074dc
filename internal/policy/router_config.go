// Package policy assembles the disclosure policy chain and the handlers that
// sit on top of it.
package policy

import (
	"log/slog"
	"time"

	"github.com/diewo77/scam-catalog/auth"
	"github.com/diewo77/scam-catalog/internal/catalog"
	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/handlers"
	"github.com/diewo77/scam-catalog/internal/linkage"
	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/store"
	"gorm.io/gorm"
)

// Options configures NewRouterConfig. Zero values are usable in tests.
type Options struct {
	FreeTrial      bool
	PolicyCacheTTL time.Duration
	StaticURL      string
	SessionSecret  string
	Logger         *slog.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// RouterConfig holds configured services, handlers and middleware for the
// application.
type RouterConfig struct {
	Store    *store.Store
	Sessions *auth.Sessions
	// Tiers caches field tiers in front of the field_access_policies table.
	Tiers   *disclosure.CachedTierResolver
	Gate    *disclosure.Gate
	Linker  *linkage.Maintainer
	Catalog *catalog.Service

	FreeTrial bool
	Logger    *slog.Logger

	AuthHandler         *handlers.AuthHandler
	CaseHandler         *handlers.CaseHandler
	AdminProfileHandler *handlers.AdminProfileHandler
	AdminPolicyHandler  *handlers.AdminPolicyHandler
}

// NewRouterConfig wires store, linkage, the cached tier resolver, the
// disclosure gate, the catalog service and every handler.
func NewRouterConfig(db *gorm.DB, opts Options) *RouterConfig {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ttl := opts.PolicyCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	secret := opts.SessionSecret
	if secret == "" {
		secret = auth.DevSecret
	}

	s := store.New(db)
	tiers := disclosure.NewCachedTierResolver(disclosure.NewStoreTierResolver(s), ttl, opts.Metrics)
	gate := disclosure.NewGate(tiers, s, log, opts.Metrics)
	linker := linkage.New(s, log, opts.Metrics)
	svc := catalog.New(s, linker, gate, catalog.Options{
		StaticURL: opts.StaticURL,
		Logger:    log,
		Tiers:     tiers,
	})
	sessions := auth.NewSessions(secret, auth.DefaultSessionTTL)

	return &RouterConfig{
		Store:               s,
		Sessions:            sessions,
		Tiers:               tiers,
		Gate:                gate,
		Linker:              linker,
		Catalog:             svc,
		FreeTrial:           opts.FreeTrial,
		Logger:              log,
		AuthHandler:         handlers.NewAuthHandler(s, sessions, log),
		CaseHandler:         handlers.NewCaseHandler(svc, log),
		AdminProfileHandler: handlers.NewAdminProfileHandler(svc, log),
		AdminPolicyHandler:  handlers.NewAdminPolicyHandler(svc, log),
	}
}
