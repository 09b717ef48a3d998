// Package vectorstore persists chunk text, vectors and metadata and
// serves nearest-neighbor queries by cosine distance. Two backends are
// provided: an embedded chromem database and Postgres with pgvector.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

var (
	// ErrEmbeddingFailed reports that the embedding backend returned no
	// vectors; indexing aborts without partial writes.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// Store is the vector index contract.
type Store interface {
	// IsEmpty is true iff zero entries are stored. It never fails: on
	// any internal error it conservatively reports empty, forcing a
	// re-index rather than silently serving a partial one.
	IsEmpty(ctx context.Context) bool

	// Index embeds all chunk texts in one batch and upserts the entries.
	// Empty input is a logged no-op. An empty embedding result aborts
	// with ErrEmbeddingFailed and writes nothing.
	Index(ctx context.Context, chunks []models.Chunk) error

	// Query embeds the text and returns up to topK nearest entries in
	// ascending cosine distance, optionally restricted by exact-match
	// metadata filters. Embedding failure yields an empty result and a
	// nil error.
	Query(ctx context.Context, text string, topK int, filters map[string]string) ([]models.Hit, error)

	// Count reports the number of indexed entries.
	Count(ctx context.Context) int
}

// NewFromConfig builds the configured backend.
func NewFromConfig(cfg *config.VectorStoreConfig, embedder embedding.Embedder) (Store, error) {
	switch cfg.Type {
	case "chromem", "":
		return NewChromemStore(cfg, embedder)
	case "postgres":
		return NewPostgresStore(cfg, embedder)
	default:
		return nil, fmt.Errorf("unknown vector store type: %s", cfg.Type)
	}
}

// entryMetadata is the persisted metadata for one chunk: the union of
// its source label and its own metadata mapping.
func entryMetadata(chunk models.Chunk) map[string]string {
	meta := make(map[string]string, len(chunk.Metadata)+1)
	meta[models.MetadataSource] = chunk.Source
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	return meta
}
