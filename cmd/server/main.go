package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/scam-catalog/internal/config"
	"github.com/diewo77/scam-catalog/internal/db"
	"github.com/diewo77/scam-catalog/internal/logging"
	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/policy"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	relinkFlag      = flag.Bool("relink", false, "Rebuild related-case links from stored identifiers and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log)
	slog.SetDefault(log)

	if cfg.App.SessionSecret == "" && !cfg.App.Dev {
		fatal(log, "SESSION_SECRET is required outside dev mode", nil)
	}

	dbConn, err := db.Connect(cfg.Database, cfg.App.Dev, log)
	if err != nil {
		fatal(log, "database connection failed", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			fatal(log, "migration failed", err)
		}
		log.Info("migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			fatal(log, "seeding failed", err)
		}
		log.Info("seeding completed")
		return
	}

	if cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			fatal(log, "migration failed", err)
		}
		log.Info("migrations completed")
	}

	// Every governed field needs a policy row.
	if err := db.Seed(dbConn); err != nil {
		fatal(log, "seeding failed", err)
	}

	routerCfg := policy.NewRouterConfig(dbConn, policy.Options{
		FreeTrial:      cfg.App.FreeTrial,
		PolicyCacheTTL: cfg.App.PolicyCacheTTL,
		StaticURL:      cfg.App.StaticURL,
		SessionSecret:  cfg.App.SessionSecret,
		Logger:         log,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
	})

	if *relinkFlag {
		processed, err := routerCfg.Linker.Rebuild(context.Background())
		if err != nil {
			fatal(log, "relink failed", err)
		}
		links, err := routerCfg.Store.CountLinks(context.Background())
		if err != nil {
			fatal(log, "count links failed", err)
		}
		log.Info("relink completed", "identifiers", processed, "links", links)
		return
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(log, NewApp(routerCfg)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "free_trial", cfg.App.FreeTrial)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped gracefully")
}

// migrate applies the schema with golang-migrate SQL files when configured,
// AutoMigrate otherwise.
func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.App.SQLMigrations {
		return db.RunSQLMigrations(db.DefaultMigrationsSource, cfg.Database.URL())
	}
	return db.Migrate(dbConn)
}

func fatal(log *slog.Logger, msg string, err error) {
	if err != nil {
		log.Error(msg, "error", err)
	} else {
		log.Error(msg)
	}
	os.Exit(1)
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
