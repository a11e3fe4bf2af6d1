// Package main provides the lightweight entry point for the porfiria rules
// server. This version requires no external databases: evaluation records go
// to an embedded SQLite file and remote evaluations skip the Redis cache.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/api"
	"github.com/porfiria-rules-server/internal/config"
	"github.com/porfiria-rules-server/internal/domain"
	"github.com/porfiria-rules-server/internal/medicines"
	"github.com/porfiria-rules-server/internal/record"
	"github.com/porfiria-rules-server/internal/service"
	"github.com/porfiria-rules-server/pkg/external"
)

func main() {
	_ = godotenv.Load()

	// Load lightweight configuration from environment variables
	cfg := config.LoadLiteConfig()

	logger := config.NewLogger(&domain.LoggingConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	logger.WithFields(logrus.Fields{
		"scheme":   cfg.Scheme,
		"data_dir": cfg.DataDir,
	}).Info("Starting porfiria rules server (lite)")

	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	var catalog *domain.Catalog
	switch domain.Scheme(cfg.Scheme) {
	case domain.SchemeGeneric:
		catalog = domain.GenericCatalog()
	default:
		catalog = domain.DetailedCatalog()
	}

	ruleConfig, err := domain.DefaultConfiguration(catalog.Scheme())
	if err != nil {
		logger.WithError(err).Fatal("Invalid rule configuration")
	}

	evaluator, err := service.NewEvaluator(catalog, ruleConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build local evaluator")
	}

	store, err := record.NewSQLiteStore(cfg.RecordDBPath())
	if err != nil {
		logger.WithError(err).Fatal("Failed to open evaluation record store")
	}
	defer store.Close()

	// Remote rules service is optional in lite mode
	var kieClient domain.KIEClient
	if cfg.KIEBaseURL != "" {
		kieClient = external.NewKIEClient(external.KIEConfig{
			BaseURL: cfg.KIEBaseURL,
			Timeout: cfg.KIETimeout,
		})
	} else {
		logger.Info("No remote rules service configured, evaluating locally only")
	}

	registry, err := medicines.NewRegistry(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load medicine registry")
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

	gateway := service.NewEvaluationGateway(kieClient, evaluator, logger)
	if kieClient != nil {
		gateway.StartHealthMonitor(ctx, 30*time.Second)
	}

	serverCfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:         "0.0.0.0",
			Port:         cfg.HTTPPort,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: domain.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat},
	}

	server := api.NewServer(serverCfg, gateway, evaluator, store, registry, logger)

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Porfiria rules server (lite) stopped")
}
