package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playabot-backend/internal/models"
	"playabot-backend/internal/store"
	"playabot-backend/pkg/logx"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS playa_leads (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT,
    phone TEXT,
    email TEXT,
    interest TEXT,
    message_summary TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS playa_knowledge (
    id BIGSERIAL PRIMARY KEY,
    content TEXT NOT NULL,
    category TEXT NOT NULL,
    source TEXT NOT NULL,
    metadata JSONB,
    embedding vector(1536),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Init creates the tables (and the pgvector extension) if they do not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("database error initializing schema: %w", err)
	}
	return nil
}

const createLead = `
INSERT INTO playa_leads (name, phone, email, interest, message_summary)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, phone, email, interest, message_summary, created_at;
`

// CreateLead inserts a single lead row. No retry, no dedup.
func (s *PostgresStore) CreateLead(ctx context.Context, params store.CreateLeadParams) (*models.Lead, error) {
	row := s.db.QueryRow(ctx, createLead,
		params.Name,
		params.Phone,
		params.Email,
		params.Interest,
		params.Summary,
	)

	var lead models.Lead
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.Interest,
		&lead.Summary,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("database error creating lead: %w", err)
	}

	logx.Info().Str("lead_id", lead.ID.String()).Msg("lead stored")
	return &lead, nil
}

const insertChunk = `
INSERT INTO playa_knowledge (content, category, source, metadata, embedding)
VALUES ($1, $2, $3, $4, $5::vector);
`

// ReplaceKnowledgeChunks regenerates the knowledge table contents in one
// transaction: existing rows are deleted, then the new set is inserted. A
// failed run rolls back and leaves the previous corpus intact.
func (s *PostgresStore) ReplaceKnowledgeChunks(ctx context.Context, chunks []store.KnowledgeChunkParams) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM playa_knowledge`); err != nil {
		return fmt.Errorf("database error clearing knowledge table: %w", err)
	}

	for i, chunk := range chunks {
		_, err := tx.Exec(ctx, insertChunk,
			chunk.Content,
			chunk.Category,
			chunk.Source,
			chunk.Metadata,
			vectorLiteral(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("database error inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database error committing knowledge replace: %w", err)
	}

	logx.Info().Int("chunks", len(chunks)).Msg("knowledge table regenerated")
	return nil
}

const searchChunks = `
SELECT id, content, category, source, metadata,
       1 - (embedding <=> $1::vector) AS similarity
FROM playa_knowledge
WHERE 1 - (embedding <=> $1::vector) >= $2
  AND ($3::text IS NULL OR category = $3)
ORDER BY embedding <=> $1::vector
LIMIT $4;
`

// SearchKnowledgeChunks runs a cosine similarity search over the chunk
// table, most similar first.
func (s *PostgresStore) SearchKnowledgeChunks(ctx context.Context, params store.SearchChunksParams) ([]models.KnowledgeSearchResult, error) {
	topK := params.TopK
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.Query(ctx, searchChunks,
		vectorLiteral(params.Embedding),
		params.Threshold,
		params.Category,
		topK,
	)
	if err != nil {
		return nil, fmt.Errorf("database error searching knowledge: %w", err)
	}
	defer rows.Close()

	var chunks []models.KnowledgeSearchResult
	for rows.Next() {
		var chunk models.KnowledgeSearchResult
		err := rows.Scan(
			&chunk.ID,
			&chunk.Content,
			&chunk.Category,
			&chunk.Source,
			&chunk.Metadata,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning knowledge chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge chunks: %w", err)
	}
	return chunks, nil
}

// vectorLiteral renders an embedding as a pgvector input literal: [1,2,3].
func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
