package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"email-insight/backend/internal/analysis"
	"email-insight/backend/internal/auth"
	"email-insight/backend/internal/config"
	"email-insight/backend/internal/db"
	"email-insight/backend/internal/handlers"
	"email-insight/backend/internal/llm"
	"email-insight/backend/internal/middleware"
	"email-insight/backend/internal/queue"
	"email-insight/backend/internal/realtime"
	"email-insight/backend/internal/router"
)

func main() {
	cfg := config.Load()

	providerConfig := &llm.ProviderConfig{
		ProviderName:  cfg.Provider,
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		PrimaryModel:  cfg.PrimaryModel,
		FallbackModel: cfg.FallbackModel,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
	}
	provider := llm.NewFactory().CreateProvider(providerConfig)
	if provider == nil {
		log.Fatalf("unsupported model provider: %s", cfg.Provider)
	}

	var usage *llm.UsageStore
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := db.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()
		usage = llm.NewUsageStore(store)
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		if err := usage.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure usage schema: %v", err)
		}
		cancel()
	}

	client := llm.NewClient(provider, cfg.ModelTimeout, usage)
	pipeline := analysis.NewPipeline(client)

	var authService *auth.Service
	if cfg.JWTSecret != "" {
		service, err := auth.NewService(cfg.JWTSecret, cfg.AuthCredentialHash, 24*time.Hour)
		if err != nil {
			log.Fatalf("failed to init auth: %v", err)
		}
		authService = service
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	hub := realtime.NewHub()
	var q *queue.Queue
	if cfg.RedisURL != "" {
		created, err := queue.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		q = created
		worker := &queue.Worker{Queue: q, Pipeline: pipeline, Hub: hub}
		go worker.Start(workerCtx)
	}

	api := handlers.NewAPI(pipeline, authService, usage, q, hub, provider)
	limiter := middleware.NewRateLimiter(60, time.Minute)
	rt := router.New(api, authService, limiter, cfg.FrontendOrigin)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rt,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopWorker()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
