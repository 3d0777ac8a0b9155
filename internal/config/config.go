package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"playabot-backend/pkg/logx"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres (leads + knowledge chunks). Required; the server refuses to
	// start without it.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Completion API (OpenRouter / OpenAI-compatible). The key is checked at
	// request time so the server can still serve non-chat routes without it.
	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	ChatModel         string `envconfig:"CHAT_MODEL" default:"openai/gpt-4o"`

	// Embeddings API for the ingestion pipeline and similarity search.
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// Attribution headers sent with every completion request.
	AppReferer string `envconfig:"APP_REFERER" default:"https://playabot.vercel.app"`
	AppTitle   string `envconfig:"APP_TITLE" default:"PLAYA Concierge"`

	// Directory of Markdown knowledge documents used for keyword context.
	KnowledgeDir string `envconfig:"KNOWLEDGE_DIR" default:"knowledge"`
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logx.Warn().Msg("no .env file found, using environment variables only")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	logx.Info().
		Str("environment", cfg.Environment).
		Str("port", cfg.HTTPPort).
		Str("chat_model", cfg.ChatModel).
		Str("knowledge_dir", cfg.KnowledgeDir).
		Msg("configuration loaded")

	return &cfg, nil
}
