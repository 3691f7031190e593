// Package main is the entry point for the API server.
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

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/chatbot"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/config"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/events"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/handler"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/intent"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/llm"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/middleware"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/session"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/tracing"
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
		tp, err := tracing.InitTracer(ctx, "vietnamese-business-rag-chatbot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect the chat-turn event stream. Optional: the chatbot works
	// without it, audit events are simply not published.
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(ctx, cfg.NATSURL, log)
		if err != nil {
			log.Warn("failed to connect event stream, turn events disabled", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Generation client
	generator, err := llm.NewClient(llm.Provider(cfg.GenerationProvider), generationKey(cfg))
	if err != nil {
		log.Error("failed to create generation client", zap.Error(err))
		os.Exit(1)
	}

	// Intent classification client. Groq is preferred for its latency; the
	// generation client serves both roles when no Groq key is configured.
	intentClient := generator
	if cfg.GroqAPIKey != "" {
		groq, err := llm.NewGroqClient(cfg.GroqAPIKey)
		if err != nil {
			log.Warn("failed to create Groq client, classifying with generation client", zap.Error(err))
		} else {
			intentClient = groq
		}
	}

	// Embeddings and document store
	embedder, err := llm.NewEmbeddingClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Error("failed to create embedding client", zap.Error(err))
		os.Exit(1)
	}
	store := retrieval.NewMemoryStore(embedder)

	// Reranker is optional; without it results keep similarity order.
	var scorer retrieval.Scorer
	if cfg.RerankerEndpoint != "" {
		scorer = retrieval.NewHTTPScorer(cfg.RerankerEndpoint, cfg.RerankerTimeout)
	}

	retriever := retrieval.NewRetriever(store, scorer, retrieval.Config{
		TopK:                cfg.RetrievalTopK,
		RerankTopK:          cfg.RerankTopK,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}, log)

	classifier := intent.NewClassifier(intentClient, cfg.IntentModel, cfg.IntentTemperature, log)
	catalog := form.NewCatalog()

	// Session manager; each session gets its own orchestrator over the
	// shared stateless components.
	sessions := session.NewManager(func() *chatbot.Orchestrator {
		return chatbot.New(chatbot.Config{
			Classifier:      classifier,
			Retriever:       retriever,
			Generator:       generator,
			GenerationModel: cfg.GenerationModel,
			Catalog:         catalog,
			ContextWindow:   cfg.ContextWindow,
			Logger:          log,
		})
	}, cfg.SessionTimeout, cfg.SessionSweepInterval, log)
	defer sessions.Close()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(publisher)
	chatHandler := handler.NewChatHandler(sessions, publisher, log)
	sessionHandler := handler.NewSessionHandler(sessions, log)
	templateHandler := handler.NewTemplateHandler(catalog)
	documentHandler := handler.NewDocumentHandler(store, log)
	systemHandler := handler.NewSystemHandler(sessions, store, retriever, catalog)

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

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Chat
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/history", chatHandler.History)
		r.Delete("/chat/history", chatHandler.ClearHistory)

		// Sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
			})
		})

		// Form templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", templateHandler.List)
			r.Get("/questions", templateHandler.Questions)
			r.Get("/{name}", templateHandler.Get)
		})

		// Document ingestion
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Add)
			r.Get("/stats", documentHandler.Stats)
		})

		// Diagnostics
		r.Get("/system/stats", systemHandler.Stats)
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

// generationKey selects the API key matching the configured provider.
func generationKey(cfg *config.Config) string {
	switch llm.Provider(cfg.GenerationProvider) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case llm.ProviderGroq:
		return cfg.GroqAPIKey
	default:
		return cfg.OpenAIAPIKey
	}
}
