// Package api exposes the questionnaire evaluation service over HTTP. The
// surface covers evaluation submission and retrieval, the active symptom
// catalog and rule set, the medicine-safety registry, and a websocket feed of
// the remote rules service health.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
	"github.com/porfiria-rules-server/internal/medicines"
	"github.com/porfiria-rules-server/internal/middleware"
	"github.com/porfiria-rules-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config    *domain.Config
	gateway   *service.EvaluationGateway
	evaluator *service.Evaluator
	store     domain.EvaluationStore
	registry  *medicines.Registry
	logger    *logrus.Logger
	router    *gin.Engine
	server    *http.Server
}

// NewServer creates a new HTTP server instance. store may be nil when
// persistence is disabled; evaluations are then returned but not recorded.
func NewServer(
	cfg *domain.Config,
	gateway *service.EvaluationGateway,
	evaluator *service.Evaluator,
	store domain.EvaluationStore,
	registry *medicines.Registry,
	logger *logrus.Logger,
) *Server {
	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(corsMiddleware())

	server := &Server{
		config:    cfg,
		gateway:   gateway,
		evaluator: evaluator,
		store:     store,
		registry:  registry,
		logger:    logger,
		router:    router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Router exposes the gin engine, primarily for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// Websocket feed of the remote rules service health
	s.router.GET("/ws/kie/status", s.handleKIEStatusSocket)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(50, 100))
	{
		v1.POST("/evaluations", s.handleCreateEvaluation)
		v1.GET("/evaluations/:id", s.handleGetEvaluation)
		v1.GET("/patients/:id/evaluations", s.handleListPatientEvaluations)
		v1.GET("/questions", s.handleGetQuestions)
		v1.GET("/rules", s.handleGetRules)
		v1.GET("/medicines", s.handleGetMedicines)
		v1.GET("/kie/health", s.handleKIEHealth)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
