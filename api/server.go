package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
	"github.com/killallgit/voicenote-api/pkg/config"
)

// Server represents the HTTP server
type Server struct {
	engine             *gin.Engine
	httpServer         *http.Server
	cfg                *config.Config
	rateLimiters       *sync.Map
	cleanupInitialized sync.Once
	cleanupStop        chan struct{}
	stopOnce           sync.Once

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server for deps.Config
func NewServer(deps *types.Dependencies) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:       engine,
		dependencies: deps,
		rateLimiters: &sync.Map{},
		cleanupStop:  make(chan struct{}),
	}
	if deps != nil && deps.Config != nil {
		s.cfg = deps.Config
		s.httpServer = &http.Server{
			Addr:           fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
			Handler:        engine,
			ReadTimeout:    s.cfg.Server.ReadTimeout,
			WriteTimeout:   s.cfg.Server.WriteTimeout,
			MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
		}
	}
	return s
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	if s.cfg == nil {
		return fmt.Errorf("config is nil")
	}
	s.setupMiddleware()
	return RegisterRoutes(s.engine, s.dependencies, s.rateLimiters, s.cleanupStop, &s.cleanupInitialized)
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	s.engine.Use(RequestLogger())
	if s.dependencies.Metrics != nil && s.cfg.Monitoring.Enabled {
		s.engine.Use(s.dependencies.Metrics.APIMiddleware(s.cfg.Monitoring.MetricsPath))
	}
	if s.cfg.Security.EnableCORS {
		s.engine.Use(CORS(s.cfg.Security.CORSOrigins))
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Addr is the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.cleanupStop) })
	return s.httpServer.Shutdown(ctx)
}
