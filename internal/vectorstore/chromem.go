package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

const chromemCompress = false

// ChromemStore is the embedded chromem-go backend. The database persists
// to a local directory unless configured in-memory.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
}

func NewChromemStore(cfg *config.VectorStoreConfig, embedder embedding.Embedder) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, chromemCompress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

func (s *ChromemStore) IsEmpty(ctx context.Context) bool {
	return s.collection.Count() == 0
}

func (s *ChromemStore) Count(ctx context.Context) int {
	return s.collection.Count()
}

func (s *ChromemStore) Index(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks to index")
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil || len(vectors) == 0 {
		log.Error().Err(err).Int("chunks", len(chunks)).Msg("Embedding failed, aborting index")
		return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ChunkID,
			Content:   chunk.Content,
			Metadata:  entryMetadata(chunk),
			Embedding: vectors[i],
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	log.Info().Int("count", len(docs)).Msg("Indexed chunks")
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, text string, topK int, filters map[string]string) ([]models.Hit, error) {
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil || len(vector) == 0 {
		log.Error().Err(err).Msg("Query embedding failed, returning empty result")
		return nil, nil
	}

	// chromem rejects nResults above the number of stored entries.
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       topK,
		Where:          filters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]models.Hit, len(results))
	for i, r := range results {
		hits[i] = models.Hit{
			Text:     r.Content,
			Distance: 1 - float64(r.Similarity),
			Metadata: r.Metadata,
		}
	}
	return hits, nil
}
