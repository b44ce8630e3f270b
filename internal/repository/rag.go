package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/luminari-dev/lumi-agent/pkg/embedding"
)

// Document is one ranked retrieval hit.
type Document struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// Retriever returns ranked passages for a query. statusFilter selects
// documents by their metadata status ("active" excludes deprecated lore;
// "all" disables the filter).
type Retriever interface {
	Search(ctx context.Context, query string, k int, statusFilter string) ([]Document, error)
}

// VectorRetriever performs cosine-similarity search over pgvector-embedded
// documents.
type VectorRetriever struct {
	pool     *pgxpool.Pool
	embedder embedding.Provider
	log      *zap.Logger
}

// NewVectorRetriever wires the retriever to the shared pool and embedder.
func NewVectorRetriever(pool *pgxpool.Pool, embedder embedding.Provider, log *zap.Logger) *VectorRetriever {
	return &VectorRetriever{pool: pool, embedder: embedder, log: log}
}

// Search embeds the query and returns the k nearest active documents,
// highest similarity first.
func (r *VectorRetriever) Search(ctx context.Context, query string, k int, statusFilter string) ([]Document, error) {
	if k <= 0 {
		k = 3
	}
	if statusFilter == "" {
		statusFilter = "active"
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE $3 = 'all' OR metadata->>'status' = $3
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(vec), k, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc     Document
			rawMeta []byte
		)
		if err := rows.Scan(&doc.Content, &rawMeta, &doc.Similarity); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &doc.Metadata); err != nil {
				r.log.Warn("document metadata unparsable", zap.Error(err))
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}

	r.log.Debug("retrieval complete",
		zap.Int("hits", len(docs)), zap.String("filter", statusFilter))
	return docs, nil
}
