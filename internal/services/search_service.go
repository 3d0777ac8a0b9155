package services

import (
	"context"
	"fmt"
	"strings"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/config"
	"playabot-backend/internal/models"
	"playabot-backend/internal/store"
	"playabot-backend/pkg/logx"
)

const (
	defaultSearchTopK      = 5
	defaultSearchThreshold = 0.75
)

// SearchService is the embedding-based retrieval path over the pgvector
// knowledge table. It runs alongside the keyword layer, not instead of it.
type SearchService struct {
	client *ai.Client
	cfg    *config.Config
	store  store.Store
}

// NewSearchService creates a new SearchService.
func NewSearchService(client *ai.Client, cfg *config.Config, s store.Store) *SearchService {
	return &SearchService{client: client, cfg: cfg, store: s}
}

// SearchOptions tune one similarity search.
type SearchOptions struct {
	Category  *string
	TopK      int
	Threshold float64
}

// SearchKnowledge embeds the query and returns the nearest chunks, most
// similar first.
func (s *SearchService) SearchKnowledge(ctx context.Context, query string, opts SearchOptions) ([]models.KnowledgeSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultSearchTopK
	}
	if opts.Threshold == 0 {
		opts.Threshold = defaultSearchThreshold
	}

	embedding, err := s.client.Embed(ctx, ai.EmbeddingConfig{
		BaseURL: s.cfg.OpenAIBaseURL,
		APIKey:  s.cfg.OpenAIAPIKey,
		Model:   s.cfg.EmbeddingModel,
	}, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	results, err := s.store.SearchKnowledgeChunks(ctx, store.SearchChunksParams{
		Embedding: embedding,
		TopK:      opts.TopK,
		Threshold: opts.Threshold,
		Category:  opts.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	return results, nil
}

// SearchContext formats a user message's search results as a system-prompt
// addendum, mirroring the keyword assembler's instructional frame. Degrades
// to "" on any failure; retrieval misses are never user-facing errors.
func (s *SearchService) SearchContext(ctx context.Context, userMessage string) string {
	results, err := s.SearchKnowledge(ctx, userMessage, SearchOptions{TopK: 3})
	if err != nil {
		logx.Warn().Err(err).Msg("embedding search unavailable, continuing without context")
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		label := r.Category
		if label == "" {
			label = "general"
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", label, r.Content))
	}

	return "\n\n---\n## 🔍 관련 정보 (참고해서 자연스럽게 답변하세요)\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\n---\n위 정보를 직접 인용하지 말고, 자연스럽게 대화에 녹여서 답변하세요.\n"
}
