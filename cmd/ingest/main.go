// Command ingest regenerates the pgvector knowledge table from the Markdown
// corpus: chunk, embed, replace. Intended to run offline after corpus edits.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/config"
	"playabot-backend/internal/rag"
	"playabot-backend/internal/services"
	"playabot-backend/internal/store/postgres"
	"playabot-backend/pkg/logx"
)

func main() {
	logx.Init(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.DatabaseURL == "" {
		logx.Fatal().Msg("DATABASE_URL environment variable is not set")
	}
	if cfg.OpenAIAPIKey == "" {
		logx.Fatal().Msg("OPENAI_API_KEY environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logx.Fatal().Err(err).Msg("unable to create database connection pool")
	}
	defer dbpool.Close()

	pgStore := postgres.NewPostgresStore(dbpool)
	if err := pgStore.Init(ctx); err != nil {
		logx.Fatal().Err(err).Msg("failed to initialize database schema")
	}

	knowledge, err := rag.LoadKnowledgeDir(cfg.KnowledgeDir)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load knowledge corpus")
	}
	if len(knowledge) == 0 {
		logx.Fatal().Str("dir", cfg.KnowledgeDir).Msg("knowledge corpus is empty")
	}

	ingest := services.NewIngestService(ai.NewClient(), cfg, pgStore)
	count, err := ingest.Run(ctx, knowledge)
	if err != nil {
		logx.Fatal().Err(err).Msg("ingestion failed")
	}

	logx.Info().Int("chunks", count).Msg("ingestion complete")
}
