package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/codementor-ai/codementor/internal/ai"
	aicache "github.com/codementor-ai/codementor/internal/ai/cache"
	"github.com/codementor-ai/codementor/internal/ai/gateway"
	"github.com/codementor-ai/codementor/internal/ai/monitor"
	"github.com/codementor-ai/codementor/internal/ai/tokens"
	"github.com/codementor-ai/codementor/internal/server/handlers"
	"github.com/codementor-ai/codementor/internal/shared/config"
	"github.com/codementor-ai/codementor/internal/shared/database"
	"github.com/codementor-ai/codementor/internal/shared/redis"
	"github.com/codementor-ai/codementor/internal/upload"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slog.Info("starting codementor", "port", cfg.Port, "env", cfg.Env, "model", cfg.OpenAIModel)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	// Initialize Redis; the service degrades to uncached operation without it
	var respCache *aicache.Cache
	var redisClient *redis.Client
	redisClient, err = redis.New(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("Redis unavailable, responses will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		respCache = aicache.New(redisClient)
		slog.Info("connected to Redis")
	}

	// Pricing table, optionally overridden from file
	pricing := tokens.DefaultPricingTable()
	if cfg.PricingFile != "" {
		pricing, err = tokens.LoadPricingTable(cfg.PricingFile)
		if err != nil {
			log.Fatalf("Failed to load pricing table: %v", err)
		}
		slog.Info("loaded pricing overrides", "file", cfg.PricingFile)
	}

	// AI stack: token accountant, model gateway, orchestrator
	counter := tokens.NewAccountant(cfg.OpenAIModel, pricing)
	gw := gateway.New(cfg.OpenAIAPIKey, gateway.Config{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.AITimeout,
	}, counter)
	metrics := monitor.NewMetrics()
	aiService := ai.NewService(gw, respCache, counter, metrics, ai.Config{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.AITimeout,
	})
	slog.Info("initialized AI service")

	// Upload store
	store, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	// Initialize handlers
	aiHandler := handlers.NewAIHandler(aiService)
	documentHandler := handlers.NewDocumentHandler(db, store)
	questionHandler := handlers.NewQuestionHandler(db, aiService)
	sessionHandler := handlers.NewStudySessionHandler(db)
	middleware := handlers.NewMiddleware(db, redisClient, cfg.DefaultRateLimit)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(120 * time.Second))
	r.Use(middleware.CORSMiddleware)

	// Process health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes (with auth and rate limiting)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.RateLimitMiddleware)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-code", aiHandler.HandleGenerateCode)
			r.Post("/explain-code", aiHandler.HandleExplainCode)
			r.Post("/review-code", aiHandler.HandleReviewCode)
			r.Get("/health", aiHandler.HandleHealth)
			r.Get("/context", aiHandler.HandleContext)
			r.Get("/metrics", aiHandler.HandleMetrics)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", documentHandler.HandleUpload)
			r.Get("/", documentHandler.HandleList)
			r.Get("/{id}", documentHandler.HandleGet)
			r.Put("/{id}", documentHandler.HandleUpdate)
			r.Delete("/{id}", documentHandler.HandleDelete)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Post("/generate/{documentID}", questionHandler.HandleGenerate)
			r.Get("/document/{documentID}", questionHandler.HandleListByDocument)
			r.Get("/{id}", questionHandler.HandleGet)
			r.Delete("/{id}", questionHandler.HandleDelete)
			r.Post("/{id}/regenerate-explanation", questionHandler.HandleRegenerateExplanation)
		})

		r.Route("/study-sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.HandleCreate)
			r.Get("/", sessionHandler.HandleList)
			r.Get("/document/{documentID}", sessionHandler.HandleListByDocument)
			r.Get("/{id}", sessionHandler.HandleGet)
			r.Put("/{id}", sessionHandler.HandleUpdate)
			r.Delete("/{id}", sessionHandler.HandleDelete)
		})
	})

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server listening", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down gracefully")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
