// Package main is the entry point for the dashboard server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/config"
	"github.com/aidentify/detection-dashboard/internal/detect"
	"github.com/aidentify/detection-dashboard/internal/events"
	"github.com/aidentify/detection-dashboard/internal/handler"
	"github.com/aidentify/detection-dashboard/internal/middleware"
	"github.com/aidentify/detection-dashboard/internal/session"
	"github.com/aidentify/detection-dashboard/internal/upload"
	"github.com/aidentify/detection-dashboard/internal/web"
	"github.com/aidentify/detection-dashboard/pkg/logger"
	"github.com/aidentify/detection-dashboard/pkg/tracing"
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

	log.Info("starting dashboard server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "detection-dashboard", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS if configured; the verdict event stream is optional.
	var eventsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsClient, err = events.Connect(events.Config{
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

		publisher = events.NewPublisher(eventsClient)
		if err := publisher.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Detection backend client
	detectClient := detect.NewClient(detect.Config{
		BaseURL:        cfg.DetectBaseURL,
		Timeout:        cfg.DetectTimeout,
		AnalyzeTimeout: cfg.AnalyzeTimeout,
	}, log)

	// Per-user dashboard state and upload widgets
	store := session.NewStore(detectClient, log)
	widgets := upload.NewRegistry(cfg.MaxUploadBytes)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	chatHandler := handler.NewChatHandler(store, widgets, log)
	analyzeHandler := handler.NewAnalyzeHandler(store, widgets, detectClient, publisher, cfg.MaxUploadBytes, log)

	webHandler, err := web.NewHandler(store, widgets, cfg.SessionCookie, cfg.SessionJWTSecret, log)
	if err != nil {
		log.Error("failed to initialize web handler", zap.Error(err))
		os.Exit(1)
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.MethodOverride)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Pages
	r.Get("/", webHandler.Landing)
	r.Get("/dashboard", webHandler.Dashboard)
	r.Handle("/static/*", web.Static())

	// API routes with session authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionJWTSecret, cfg.SessionCookie))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.List)
			r.Post("/refresh", chatHandler.Refresh)
			r.Post("/new", chatHandler.New)
			r.Delete("/", chatHandler.DeleteAll)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/select", chatHandler.Select)
				r.Delete("/", chatHandler.Delete)
			})
		})

		r.Post("/attachment", analyzeHandler.Attach)
		r.Delete("/attachment", analyzeHandler.Detach)
		r.Post("/analyze", analyzeHandler.Analyze)
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
