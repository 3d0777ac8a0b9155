package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/config"
	"playabot-backend/internal/store"
	"playabot-backend/pkg/logx"
)

const (
	embedBatchSize   = 16
	embedMaxAttempts = 3
)

// faqPattern matches "**Qn. question**\n> A: answer" blocks in the corpus.
var faqPattern = regexp.MustCompile(`(?s)\*\*Q\d+\.\s*(.+?)\*\*\s*\n>\s*A:\s*(.+?)(?:\n\n|\z)`)

// ChunkSeed is a knowledge chunk before embedding.
type ChunkSeed struct {
	Content  string
	Category string
	Source   string
	Metadata json.RawMessage
}

// IngestService is the offline batch pipeline: chunk the knowledge corpus,
// embed the chunks, and fully regenerate the pgvector table. There is no
// incremental update.
type IngestService struct {
	client *ai.Client
	cfg    *config.Config
	store  store.Store
}

// NewIngestService creates a new IngestService.
func NewIngestService(client *ai.Client, cfg *config.Config, s store.Store) *IngestService {
	return &IngestService{client: client, cfg: cfg, store: s}
}

// ParseChunks splits each knowledge document into one chunk per "## "
// section, plus one chunk per FAQ question/answer pair found anywhere in
// the document. Documents without headings become a single chunk.
func ParseChunks(knowledge map[string]string) []ChunkSeed {
	var seeds []ChunkSeed

	for source, content := range knowledge {
		for _, section := range splitTopSections(content) {
			seeds = append(seeds, ChunkSeed{
				Content:  section,
				Category: source,
				Source:   source,
				Metadata: json.RawMessage(`{"type":"section"}`),
			})
		}

		for _, m := range faqPattern.FindAllStringSubmatch(content, -1) {
			seeds = append(seeds, ChunkSeed{
				Content:  fmt.Sprintf("질문: %s\n답변: %s", strings.TrimSpace(m[1]), strings.TrimSpace(m[2])),
				Category: "faq",
				Source:   source,
				Metadata: json.RawMessage(`{"type":"faq"}`),
			})
		}
	}

	return seeds
}

// splitTopSections breaks a document on "## " headings. Text before the
// first heading stays attached to nothing and is emitted as its own chunk
// when non-empty.
func splitTopSections(content string) []string {
	lines := strings.Split(content, "\n")

	var sections []string
	var current []string

	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n"))
		if section != "" {
			sections = append(sections, section)
		}
		current = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// Run executes one full ingestion: parse, embed in batches with exponential
// backoff on failure, then replace the table contents in one transaction.
func (s *IngestService) Run(ctx context.Context, knowledge map[string]string) (int, error) {
	seeds := ParseChunks(knowledge)
	if len(seeds) == 0 {
		return 0, fmt.Errorf("no chunks parsed from knowledge corpus")
	}
	logx.Info().Int("chunks", len(seeds)).Msg("parsed knowledge corpus")

	embCfg := ai.EmbeddingConfig{
		BaseURL: s.cfg.OpenAIBaseURL,
		APIKey:  s.cfg.OpenAIAPIKey,
		Model:   s.cfg.EmbeddingModel,
	}

	params := make([]store.KnowledgeChunkParams, 0, len(seeds))
	for start := 0; start < len(seeds); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(seeds) {
			end = len(seeds)
		}
		batch := seeds[start:end]

		texts := make([]string, len(batch))
		for i, seed := range batch {
			texts[i] = seed.Content
		}

		vectors, err := s.embedWithBackoff(ctx, embCfg, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding batch starting at %d failed: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embedding batch starting at %d returned %d vectors for %d inputs", start, len(vectors), len(batch))
		}

		for i, seed := range batch {
			params = append(params, store.KnowledgeChunkParams{
				Content:   seed.Content,
				Category:  seed.Category,
				Source:    seed.Source,
				Metadata:  seed.Metadata,
				Embedding: vectors[i],
			})
		}
		logx.Debug().Int("embedded", len(params)).Int("total", len(seeds)).Msg("embedding progress")
	}

	if err := s.store.ReplaceKnowledgeChunks(ctx, params); err != nil {
		return 0, err
	}
	return len(params), nil
}

// embedWithBackoff retries a batch with exponential delay. Rate limits and
// transient upstream failures are the expected callers of the retry path.
func (s *IngestService) embedWithBackoff(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error) {
	var lastErr error
	delay := time.Second

	for attempt := 1; attempt <= embedMaxAttempts; attempt++ {
		vectors, err := s.client.EmbedBatch(ctx, cfg, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt < embedMaxAttempts {
			logx.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("embedding batch failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}
	return nil, lastErr
}
