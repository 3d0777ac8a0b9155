package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/api"
	"playabot-backend/internal/config"
	"playabot-backend/internal/handlers"
	"playabot-backend/internal/persona"
	"playabot-backend/internal/rag"
	"playabot-backend/internal/services"
	"playabot-backend/internal/store/postgres"
	"playabot-backend/pkg/logx"
)

func main() {
	logx.Init(os.Getenv("APP_ENV"))
	logx.Info().Msg("starting PLAYA concierge backend")

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.DatabaseURL == "" {
		logx.Fatal().Msg("DATABASE_URL environment variable is not set")
	}
	if cfg.OpenRouterAPIKey == "" {
		logx.Warn().Msg("OPENROUTER_API_KEY not set, chat requests will be rejected")
	}

	// 2. Database connection pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("unable to create database connection pool")
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		logx.Fatal().Err(err).Msg("unable to ping database")
	}

	pgStore := postgres.NewPostgresStore(dbpool)
	if err := pgStore.Init(dbCtx); err != nil {
		logx.Fatal().Err(err).Msg("failed to initialize database schema")
	}
	logx.Info().Msg("database ready")

	// 3. Knowledge corpus for the keyword context layer. A missing directory
	// only disables context injection.
	knowledge, err := rag.LoadKnowledgeDir(cfg.KnowledgeDir)
	if err != nil {
		logx.Warn().Err(err).Msg("knowledge corpus unavailable, context injection disabled")
		knowledge = map[string]string{}
	} else {
		logx.Info().Int("documents", len(knowledge)).Msg("knowledge corpus loaded")
	}

	// 4. Services and handlers
	aiClient := ai.NewClient()
	playa := persona.Default()

	chatService := services.NewChatService(aiClient, cfg, playa, knowledge)
	leadService := services.NewLeadService(pgStore)
	searchService := services.NewSearchService(aiClient, cfg, pgStore)
	if cfg.OpenAIAPIKey != "" {
		chatService.SetSearchFallback(searchService.SearchContext)
	}

	router := api.NewRouter(api.RouterDependencies{
		ChatHandler: handlers.NewChatHandlers(chatService, cfg.OpenRouterAPIKey),
		LeadHandler: handlers.NewLeadHandlers(leadService),
		MetaHandler: handlers.NewMetaHandlers(playa, searchService),
	})

	// 5. HTTP server with graceful shutdown. No WriteTimeout: the chat route
	// streams for up to the router's request ceiling.
	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logx.Info().Str("port", cfg.HTTPPort).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-stopChan
	logx.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
	logx.Info().Msg("server shutdown complete")
}
