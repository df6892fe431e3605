package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/assets"
	"github.com/wardesk/faqdex/internal/config"
	"github.com/wardesk/faqdex/internal/container"
	"github.com/wardesk/faqdex/internal/docstore"
	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/engine"
	logpkg "github.com/wardesk/faqdex/internal/logger"
	"github.com/wardesk/faqdex/internal/metrics"
	"github.com/wardesk/faqdex/internal/selector"
	"github.com/wardesk/faqdex/internal/settings"
	httpTransport "github.com/wardesk/faqdex/internal/transport/http"
	"github.com/wardesk/faqdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting faqdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGradingMetrics()
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	// Build providers and the vector store — composition root
	deps := container.New(cfg, logger)
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error("Failed to close vector store", zap.Error(err))
		}
	}()

	store, err := deps.VectorStore(ctx)
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	logger.Info("Vector store ready", zap.String("driver", cfg.Store.Driver))

	embedder := deps.Embedder()

	categories := domain.NewCategoryRegistry(domain.DefaultCategories())
	thresholds := domain.Thresholds{
		MinRelevance:    cfg.Retrieval.MinRelevance,
		HighCutoff:      cfg.Retrieval.HighCutoff,
		MediumCutoff:    cfg.Retrieval.MediumCutoff,
		BotResultCount:  cfg.Retrieval.BotResultCount,
		AgentPoolSize:   cfg.Retrieval.AgentPoolSize,
		AgentMinScore:   cfg.Retrieval.AgentMinScore,
		ConfidenceFloor: cfg.Retrieval.ConfidenceFloor,
	}

	// Create services
	settingsStore := settings.NewFileStore(cfg.Settings.Path, logger)
	assetManager := assets.NewManager(cfg.Assets.ImageDir)

	eng := engine.New(embedder, store, categories, thresholds)
	sel := selector.New(eng, deps.Grader(), deps.ProGrader(), settingsStore, thresholds)
	docs := docstore.New(embedder, store, assetManager, categories)

	// Create HTTP server
	server := httpTransport.NewServer(eng, sel, docs, settingsStore, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
