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

	"github.com/chemlab-cloud/chemsearch/internal/config"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/weights"
	"github.com/chemlab-cloud/chemsearch/internal/index"
	logpkg "github.com/chemlab-cloud/chemsearch/internal/logger"
	"github.com/chemlab-cloud/chemsearch/internal/metrics"
	analyticsrepo "github.com/chemlab-cloud/chemsearch/internal/repository/analytics"
	bookmarkrepo "github.com/chemlab-cloud/chemsearch/internal/repository/bookmark"
	"github.com/chemlab-cloud/chemsearch/internal/repository/dataset"
	historyrepo "github.com/chemlab-cloud/chemsearch/internal/repository/history"
	"github.com/chemlab-cloud/chemsearch/internal/repository/store"
	chiTransport "github.com/chemlab-cloud/chemsearch/internal/transport/chi"
	analyticsuc "github.com/chemlab-cloud/chemsearch/internal/usecase/analytics"
	searchuc "github.com/chemlab-cloud/chemsearch/internal/usecase/search"
	sessionuc "github.com/chemlab-cloud/chemsearch/internal/usecase/session"
	suggestuc "github.com/chemlab-cloud/chemsearch/internal/usecase/suggest"
	"github.com/chemlab-cloud/chemsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting chemsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("records_path", cfg.Data.RecordsPath),
	)

	// Scoring configuration — weight names are validated against the field registry here.
	scoring, err := weights.New(cfg.Search.Weights, cfg.Search.Threshold, cfg.Search.Distance)
	if err != nil {
		logger.Fatal("Invalid search weights", zap.Error(err))
	}

	// Embedded store for history, bookmarks, and analytics
	st, err := store.Open(store.Config{
		Path:      cfg.Storage.Path,
		InMemory:  cfg.Storage.InMemory,
		KeyPrefix: cfg.Storage.KeyPrefix,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Load and index the record corpus
	records, err := dataset.Load(cfg.Data.RecordsPath, logger)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	ix := index.Build(records, logger)
	metrics.IndexedRecords.Set(float64(ix.Size()))
	logger.Info("Index built",
		zap.Int("records", len(records)),
		zap.Int("indexed", ix.Size()),
		zap.Int("vocabulary", len(ix.Vocabulary())),
	)

	// Create use case services
	analyticsSvc := analyticsuc.New(analyticsrepo.New(st, logger), logger)
	sessionSvc := sessionuc.New(
		historyrepo.New(st, logger),
		bookmarkrepo.New(st, logger),
		logger,
		sessionuc.WithMaxHistory(cfg.Session.MaxHistory),
		sessionuc.WithMaxBookmarks(cfg.Session.MaxBookmarks),
	)
	searchSvc := searchuc.New(ix, scoring, logger).
		WithAnalytics(analyticsSvc).
		WithHistory(sessionSvc).
		WithPopularity(analyticsSvc)
	suggestSvc := suggestuc.New(ix, cfg.Session.MaxSuggestions, logger).
		WithHistory(sessionSvc).
		WithPopular(analyticsSvc).
		WithDebounce(time.Duration(cfg.Session.DebounceMS) * time.Millisecond)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, suggestSvc, sessionSvc, analyticsSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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
