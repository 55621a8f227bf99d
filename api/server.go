package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetsight/compressor-telemetry/api/handlers"
	"github.com/fleetsight/compressor-telemetry/api/middleware"
	"github.com/fleetsight/compressor-telemetry/api/websocket"
	"github.com/fleetsight/compressor-telemetry/internal/auth"
	"github.com/fleetsight/compressor-telemetry/internal/metrics"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
	"github.com/fleetsight/compressor-telemetry/pkg/database"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	db          *database.DB
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
	provider    handlers.Provider
	generator   handlers.RunReporter
}

func NewServer(cfg *config.Config, db *database.DB, provider handlers.Provider, generator handlers.RunReporter) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTDuration)
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		db:          db,
		authService: authService,
		wsHub:       wsHub,
		provider:    provider,
		generator:   generator,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Start event bridge to forward generator events to WebSocket clients
	if provider != nil {
		eventsChan := provider.SubscribeAllEvents()
		s.wsBridge = websocket.NewEventBridge(wsHub, eventsChan)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestSizeLimit(1 << 20))

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	// Handlers
	healthHandler := handlers.NewHealthHandler(s.db, s.generator)
	authHandler := handlers.NewAuthHandler(s.config.Users, s.authService)
	readingsHandler := handlers.NewReadingsHandler(s.provider)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes
	s.router.POST("/auth/login", middleware.AuthRateLimiter(), authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Prometheus-style metrics
	s.router.GET("/metrics", gin.WrapH(metrics.Get().Handler()))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.GET("/readings", readingsHandler.List)
		protected.GET("/readings/:id", readingsHandler.Get)
		protected.POST("/wake", readingsHandler.Wake)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
