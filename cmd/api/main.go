// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/config"
	"github.com/clawd-labs/support-platform/internal/event"
	"github.com/clawd-labs/support-platform/internal/handler"
	"github.com/clawd-labs/support-platform/internal/llm"
	"github.com/clawd-labs/support-platform/internal/match"
	"github.com/clawd-labs/support-platform/internal/middleware"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/service"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
	"github.com/clawd-labs/support-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize stores
	knowledgeStore := store.NewKnowledgeStore(filepath.Join(cfg.DataDir, "knowledge_base.json"), log)
	knowledgeStore.Load()

	conversationLog := store.NewConversationLog(filepath.Join(cfg.DataDir, "conversations.json"), log)
	conversationLog.Load()

	userStore := store.NewUserStore(filepath.Join(cfg.DataDir, "users.json"), log)
	userStore.Load()

	// Optional integration event feed
	var eventsClient *event.Client
	var publisher *event.Publisher
	if cfg.NATSURL != "" {
		eventsClient, err = event.Connect(ctx, event.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer eventsClient.Close()

		publisher = event.NewPublisher(eventsClient)
		if err := publisher.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Optional AI fallback
	var aiClient llm.Client
	if cfg.AnthropicAPIKey != "" {
		aiClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic client, AI fallback disabled", zap.Error(err))
		}
	} else if cfg.OpenAIAPIKey != "" {
		aiClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			log.Warn("failed to create OpenAI client, AI fallback disabled", zap.Error(err))
		}
	}

	// Initialize services
	matchEngine := match.NewEngine(knowledgeStore)
	authSvc := service.NewAuthService(userStore, log)

	responderOpts := []service.ResponderOption{service.WithEvents(publisher)}
	if aiClient != nil {
		responderOpts = append(responderOpts, service.WithAIClient(aiClient, cfg.AIModel, cfg.AITimeout))
	}
	responder := service.NewResponder(matchEngine, conversationLog, log, responderOpts...)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	chatHandler := handler.NewChatHandler(responder, log)
	authHandler := handler.NewAuthHandler(authSvc, log)
	userHandler := handler.NewUserHandler(authSvc, log)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeStore, log)
	conversationHandler := handler.NewConversationHandler(conversationLog, log)
	dashboardHandler := handler.NewDashboardHandler(conversationLog, knowledgeStore, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Public surface
		r.Post("/chat", chatHandler.Send)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/verify-token", authHandler.VerifyToken)
		r.Post("/logout", authHandler.Logout)
		r.Get("/knowledge/stats", knowledgeHandler.Stats)
		r.Get("/dashboard/stats", dashboardHandler.Stats)
		r.Get("/integrations", dashboardHandler.Integrations)

		// Session-gated surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))

			r.Get("/conversations", conversationHandler.List)

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", userHandler.Profile)
				r.Put("/profile", userHandler.UpdateProfile)
				r.Put("/password", userHandler.ChangePassword)
			})

			r.Route("/knowledge", func(r chi.Router) {
				r.Get("/", knowledgeHandler.List)
				r.Get("/categories", knowledgeHandler.Categories)

				// Mutations need an editor role
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleAgent))

					r.Post("/", knowledgeHandler.Create)
					r.Put("/{id}", knowledgeHandler.Update)
					r.Delete("/{id}", knowledgeHandler.Delete)
					r.Post("/categories", knowledgeHandler.CreateCategory)
					r.Delete("/categories/{id}", knowledgeHandler.DeleteCategory)
				})
			})

			r.With(middleware.RequireRole(model.RoleAdmin)).Get("/admin/users", userHandler.List)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
