// Package main provides the support chatbot HTTP server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/edufuture/edubot/internal/buildinfo"
	"github.com/edufuture/edubot/internal/completion"
	"github.com/edufuture/edubot/internal/config"
	"github.com/edufuture/edubot/internal/course"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/faq"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/metrics"
	"github.com/edufuture/edubot/internal/rag"
	"github.com/edufuture/edubot/internal/ratelimit"
	"github.com/edufuture/edubot/internal/router"
	"github.com/edufuture/edubot/internal/sentry"
	"github.com/edufuture/edubot/internal/session"
	"github.com/edufuture/edubot/internal/storage"
)

const sessionIdleTimeout = 2 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.Info("Starting support chatbot server")

	// Initialize Sentry error tracking (optional)
	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Version,
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
		} else if sentry.IsEnabled() {
			defer sentry.Flush(2 * time.Second)
			log.Info("Sentry error tracking enabled")
		}
	}

	// Load lookup data
	faqRepo, err := faq.Load(cfg.FAQPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load FAQ data")
	}
	log.WithField("path", cfg.FAQPath).
		WithField("entries", faqRepo.Len()).
		Info("FAQ data loaded")

	courseRepo, err := course.Load(cfg.CoursesPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load course catalog")
	}
	log.WithField("path", cfg.CoursesPath).
		WithField("courses", courseRepo.Len()).
		Info("Course catalog loaded")

	classifier := course.NewClassifier(courseRepo, cfg.Routing)

	// Connect to the transcript archive
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open transcript archive")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Transcript archive connected")

	// Create Prometheus registry with Go and process collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create completion client (optional - requires a provider API key)
	completer, err := completion.New(context.Background(), cfg, log)
	if err != nil {
		if !errors.Is(err, domerrors.ErrCompletionDisabled) {
			log.WithError(err).Fatal("Failed to create completion client")
		}
		log.Warn("Completion disabled, unmatched messages will be rejected")
		completer = nil
	} else {
		defer func() { _ = completer.Close() }()
		log.WithField("provider", completer.Provider()).Info("Completion client created")
	}

	// Build the optional hybrid retriever for fallback context
	var retriever *rag.Retriever
	if cfg.RetrievalEnabled {
		retriever = buildRetriever(cfg, courseRepo, log)
	}

	// Assemble the router: FAQ first, then course catalog, then fallback
	stages := []router.Stage{
		router.NewFAQStage(faqRepo),
		router.NewCourseStage(classifier),
	}
	opts := []router.Option{router.WithMetrics(m)}
	if retriever != nil {
		opts = append(opts, router.WithRetriever(retriever))
	}
	rt := router.New(stages, completer, cfg.CompletionTimeout, log, opts...)

	sessions := session.NewManager(cfg.MaxHistoryTurns)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(securityHeadersMiddleware())
	engine.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		engine.Use(sentryMiddleware())
	}

	chat := newChatHandler(rt, sessions, db, m, log)

	var chatLimiters []gin.HandlerFunc
	if cfg.ChatRateBurst > 0 {
		limiter := ratelimit.NewKeyed(cfg.ChatRateBurst, cfg.ChatRateRefill)
		defer limiter.Stop()
		chatLimiters = append(chatLimiters, rateLimitMiddleware(limiter, m))
		log.WithField("burst", cfg.ChatRateBurst).
			WithField("refill_per_sec", cfg.ChatRateRefill).
			Info("Chat rate limiting enabled")
	}

	setupRoutes(engine, chat, db, registry, cfg, chatLimiters...)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Idle session cleanup
	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if removed := sessions.PruneIdle(sessionIdleTimeout); removed > 0 {
					m.SessionsActive.Sub(float64(removed))
					log.WithField("removed", removed).Debug("Pruned idle sessions")
				}
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
	log.Info("Server stopped")
}

// buildRetriever indexes the course catalog for hybrid retrieval.
// The vector side needs an embedding key; BM25 always works offline.
func buildRetriever(cfg *config.Config, courseRepo *course.Repository, log *logger.Logger) *rag.Retriever {
	docs := rag.BuildDocuments(courseRepo.Records())

	bm25Index := rag.NewBM25Index(log)
	if err := bm25Index.Initialize(docs); err != nil {
		log.WithError(err).Warn("Failed to initialize BM25 index")
		bm25Index = nil
	}

	var vectorStore *rag.VectorStore
	if cfg.EmbeddingAPIKey != "" {
		store, err := rag.NewVectorStore(cfg.EmbeddingAPIKey, log)
		if err != nil {
			log.WithError(err).Warn("Failed to create vector store, lexical retrieval only")
		} else if store != nil {
			initCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := store.Initialize(initCtx, docs); err != nil {
				log.WithError(err).Warn("Failed to index courses in vector store")
			} else {
				vectorStore = store
			}
		}
	}

	if bm25Index == nil && vectorStore == nil {
		log.Warn("Retrieval enabled but no index available, fallback context disabled")
		return nil
	}

	log.WithFields(map[string]any{
		"docs":           len(docs),
		"bm25_enabled":   bm25Index != nil,
		"vector_enabled": vectorStore != nil,
	}).Info("Hybrid retriever created")
	return rag.NewRetriever(vectorStore, bm25Index, cfg.RetrievalTopK, log)
}
