// Package main starts the full porfiria rules server: PostgreSQL-backed
// evaluation records, Redis-cached remote evaluations with circuit breaking,
// and the local rule engine as silent fallback.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/porfiria-rules-server/internal/api"
	"github.com/porfiria-rules-server/internal/config"
	"github.com/porfiria-rules-server/internal/database"
	"github.com/porfiria-rules-server/internal/domain"
	"github.com/porfiria-rules-server/internal/medicines"
	"github.com/porfiria-rules-server/internal/repository"
	"github.com/porfiria-rules-server/internal/service"
	"github.com/porfiria-rules-server/pkg/external"
)

func main() {
	// Local overrides from .env, if present
	_ = godotenv.Load()

	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(&cfg.Logging)

	logger.WithField("scheme", cfg.Engine.Scheme).Info("Starting porfiria rules server")

	// Symptom catalog and rule configuration for the active scheme
	var catalog *domain.Catalog
	switch domain.Scheme(cfg.Engine.Scheme) {
	case domain.SchemeGeneric:
		catalog = domain.GenericCatalog()
	default:
		catalog = domain.DetailedCatalog()
	}

	ruleConfig, err := configManager.RuleConfiguration()
	if err != nil {
		logger.WithError(err).Fatal("Invalid rule configuration")
	}

	evaluator, err := service.NewEvaluator(catalog, ruleConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build local evaluator")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Database: schema first, then the connection pool the repository uses
	migrations, err := database.NewMigrationRunner(configManager.GetDatabaseURL(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to prepare migrations")
	}
	if err := migrations.Up(); err != nil {
		logger.WithError(err).Fatal("Failed to apply migrations")
	}
	migrations.Close()

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	store := repository.NewEvaluationRepository(db.Pool, logger)

	// Remote rules service with cache and circuit breaker. The cache is
	// optional: without Redis the client still works, it just loses the
	// stale-answer fallback while the breaker is open.
	var kieClient domain.KIEClient
	if cfg.KIE.Enabled {
		base := external.NewKIEClient(external.KIEConfig{
			BaseURL:    cfg.KIE.BaseURL,
			Timeout:    cfg.KIE.Timeout,
			RateLimit:  cfg.KIE.RateLimit,
			RetryCount: cfg.KIE.RetryCount,
		})

		var cache *external.EvaluationCache
		if cfg.Cache.Enabled {
			cache, err = external.NewEvaluationCache(external.CacheConfig{
				RedisURL:    cfg.Cache.RedisURL,
				DefaultTTL:  cfg.Cache.DefaultTTL,
				MaxRetries:  cfg.Cache.MaxRetries,
				PoolSize:    cfg.Cache.PoolSize,
				PoolTimeout: cfg.Cache.PoolTimeout,
			})
			if err != nil {
				logger.WithError(err).Warn("Redis unavailable, continuing without evaluation cache")
				cache = nil
			}
		}

		resilient := external.NewResilientKIEClient(base, cache, catalog.Scheme(), logger)
		defer resilient.Close()
		kieClient = resilient
	} else {
		logger.Info("Remote rules service disabled, evaluating locally only")
	}

	gateway := service.NewEvaluationGateway(kieClient, evaluator, logger)
	if cfg.KIE.Enabled {
		gateway.StartHealthMonitor(ctx, cfg.KIE.HealthInterval)
	}

	registry, err := medicines.NewRegistry(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load medicine registry")
	}

	// Create server
	server := api.NewServer(cfg, gateway, evaluator, store, registry, logger)

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
