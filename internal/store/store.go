package store

import (
	"context"
	"encoding/json"

	"playabot-backend/internal/models"
)

// CreateLeadParams holds the fields for a new lead row. Nil pointers are
// stored as NULL.
type CreateLeadParams struct {
	Name     *string
	Phone    *string
	Email    *string
	Interest *string
	Summary  *string
}

// KnowledgeChunkParams is one chunk to be written during ingestion.
type KnowledgeChunkParams struct {
	Content   string
	Category  string
	Source    string
	Metadata  json.RawMessage
	Embedding []float32
}

// SearchChunksParams configures a similarity search over the chunk table.
type SearchChunksParams struct {
	Embedding []float32
	TopK      int
	Threshold float64
	Category  *string
}

// Store defines the persistence operations the services depend on.
type Store interface {
	// Init creates the schema if it does not exist.
	Init(ctx context.Context) error

	// CreateLead inserts a lead and returns the stored row.
	CreateLead(ctx context.Context, params CreateLeadParams) (*models.Lead, error)

	// ReplaceKnowledgeChunks deletes all chunks and inserts the given set in
	// one transaction.
	ReplaceKnowledgeChunks(ctx context.Context, chunks []KnowledgeChunkParams) error

	// SearchKnowledgeChunks returns the chunks nearest to the query
	// embedding, most similar first.
	SearchKnowledgeChunks(ctx context.Context, params SearchChunksParams) ([]models.KnowledgeSearchResult, error)
}
