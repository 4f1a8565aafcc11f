// Package apiserver provides the JSON API HTTP server.
package apiserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/infrastructure/config"
	"github.com/handsapp/backend/internal/infrastructure/http/handlers"
	"github.com/handsapp/backend/internal/infrastructure/http/middleware"
	"github.com/handsapp/backend/internal/infrastructure/monitoring"
	"github.com/handsapp/backend/internal/infrastructure/security"
	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/pkg/healthcheck"
)

// Server is the API HTTP server. It exposes the streaming chat endpoint,
// the conversation and recipe routes, health checks and metrics.
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux

	recommendService    inbound.RecommendService
	conversationService inbound.ConversationService
	recipeService       inbound.RecipeService
	profileService      inbound.ProfileService
	authService         *security.AuthService
	metrics             *monitoring.MetricsCollector
	health              *healthcheck.HealthCheck
}

// NewServer creates a fully routed API server. metrics and health may be
// nil; the corresponding endpoints are then not mounted.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	recommendService inbound.RecommendService,
	conversationService inbound.ConversationService,
	recipeService inbound.RecipeService,
	profileService inbound.ProfileService,
	authService *security.AuthService,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) *Server {
	s := &Server{
		config:              cfg,
		logger:              log,
		recommendService:    recommendService,
		conversationService: conversationService,
		recipeService:       recipeService,
		profileService:      profileService,
		authService:         authService,
		metrics:             metrics,
		health:              health,
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(handler, "api")
	}

	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server))
	}
	r.Use(middleware.RateLimit(s.config.RateLimit, s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware())
	}

	if s.health != nil {
		healthPath := s.config.Monitoring.HealthCheckPath
		if healthPath == "" {
			healthPath = "/health"
		}
		r.Get(healthPath, s.health.Handler())
		r.Get(healthPath+"/live", s.health.LivenessHandler())
		r.Get(healthPath+"/ready", s.health.ReadinessHandler())
	}
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClientKey(s.config.Auth.AnonKey))
		s.setupAPIV1Routes(r)
	})

	return r
}

func (s *Server) setupAPIV1Routes(r chi.Router) {
	chatH := handlers.NewChatHandlers(s.recommendService, s.metrics, s.logger)
	convH := handlers.NewConversationHandlers(s.conversationService, s.logger)
	recipeH := handlers.NewRecipeHandlers(s.recipeService, s.logger)
	profileH := handlers.NewProfileHandlers(s.profileService, s.logger)

	// The streaming route accepts anonymous traffic. A bearer token, when
	// present, only identifies the user in logs.
	r.Route("/chat", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(s.authService))
		r.HandleFunc("/stream", chatH.Stream)
	})

	r.Route("/conversations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.authService))
		r.Post("/", convH.Create)
		r.Get("/", convH.List)
		r.Get("/{id}", convH.Get)
		r.Post("/{id}/messages", convH.AppendMessage)
		r.Delete("/{id}", convH.Delete)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", recipeH.List)
		r.Get("/{id}", recipeH.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.authService))
			r.Post("/{id}/image", recipeH.UploadImage)
			r.Delete("/{id}/image", recipeH.DeleteImage)
		})
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.authService))
		r.Post("/taste-vectors", profileH.GenerateTasteVectors)
		r.Get("/taste-vectors", profileH.GetTasteVectors)
	})
}

// Router returns the routing tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
