package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/opencua/gateway/internal/api/http"
	"github.com/opencua/gateway/internal/api/middleware"
	"github.com/opencua/gateway/internal/domain/agent"
	"github.com/opencua/gateway/internal/domain/session"
	"github.com/opencua/gateway/internal/infrastructure/config"
	"github.com/opencua/gateway/internal/infrastructure/logging"
	"github.com/opencua/gateway/internal/infrastructure/monitoring"
	"github.com/opencua/gateway/internal/providers/scrapybara"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	manager *session.Manager
	logger  *logging.Logger
	metrics *monitoring.Metrics
	cfg     *config.Config
}

// NewServer wires the full gateway: provider client, agent loop,
// session registry, handlers, middleware and routes.
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()

	provider := scrapybara.New(scrapybara.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	}).WithLogger(logger).WithMetrics(metrics)

	stepper := agent.NewOpenAIStepper(agent.OpenAIConfig{
		APIKey:  cfg.Agent.APIKey,
		BaseURL: cfg.Agent.BaseURL,
		Model:   cfg.Agent.Model,
	})
	loop := agent.NewLoop(stepper, cfg.Agent.MaxTurns).
		WithLogger(logger).
		WithMetrics(metrics)

	manager := session.NewManager(provider, loop).
		WithLogger(logger).
		WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(manager, logger).
		WithMetrics(apihttp.NewHandlerMetrics(metrics))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/sessions", handlers.CreateSession)
		api.GET("/sessions", handlers.ListSessions)
		api.DELETE("/sessions/:id", handlers.DeleteSession)
		api.POST("/sessions/:id/interact", handlers.Interact)
		api.POST("/sessions/:id/action", handlers.ExecuteAction)
		api.GET("/sessions/:id/screenshot", handlers.Screenshot)
		api.GET("/sessions/:id/debug", handlers.DebugSession)
	}

	return &Server{
		router:  router,
		manager: manager,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}, nil
}

// Router exposes the configured engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks until the listener fails or Close is
// called.
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	s.logger.Info("Starting gateway", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close drains the HTTP server, releases every live instance and
// flushes the logger.
func (s *Server) Close(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.manager.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
