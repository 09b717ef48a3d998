package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

// vectorSize must match the embedding model's output dimension. The
// column type is fixed at table creation, so switching models requires
// a re-index into a fresh table.
const vectorSize = 768

type chunkEntry struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID        string          `bun:"id,pk"`
	Content   string          `bun:"content,notnull"`
	Embedding pgvector.Vector `bun:"embedding,notnull,type:vector(768)"`
	Metadata  json.RawMessage `bun:"metadata,type:jsonb"`
}

type chunkDistanceRow struct {
	ID       string          `bun:"id"`
	Content  string          `bun:"content"`
	Metadata json.RawMessage `bun:"metadata"`
	Distance float64         `bun:"distance"`
}

// PostgresStore keeps entries in a Postgres table with a pgvector column
// and orders queries by the cosine distance operator.
type PostgresStore struct {
	db       *bun.DB
	embedder embedding.Embedder
}

func NewPostgresStore(cfg *config.VectorStoreConfig, embedder embedding.Embedder) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return nil, fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*chunkEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create chunks table: %w", err)
	}

	return &PostgresStore{db: db, embedder: embedder}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) IsEmpty(ctx context.Context) bool {
	count, err := s.db.NewSelect().Model((*chunkEntry)(nil)).Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Count failed, reporting empty index")
		return true
	}
	return count == 0
}

func (s *PostgresStore) Count(ctx context.Context) int {
	count, err := s.db.NewSelect().Model((*chunkEntry)(nil)).Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Count failed")
		return 0
	}
	return count
}

func (s *PostgresStore) Index(ctx context.Context, chunks []models.Chunk) error {
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
	if len(vectors[0]) != vectorSize {
		return fmt.Errorf("embedding dimension %d does not match column dimension %d", len(vectors[0]), vectorSize)
	}

	entries := make([]chunkEntry, len(chunks))
	for i, chunk := range chunks {
		meta, err := json.Marshal(entryMetadata(chunk))
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		entries[i] = chunkEntry{
			ID:        chunk.ChunkID,
			Content:   chunk.Content,
			Embedding: pgvector.NewVector(vectors[i]),
			Metadata:  meta,
		}
	}

	// Single transaction keeps the index operation all-or-nothing.
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&entries).On("CONFLICT (id) DO UPDATE").
			Set("content = EXCLUDED.content").
			Set("embedding = EXCLUDED.embedding").
			Set("metadata = EXCLUDED.metadata").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	log.Info().Int("count", len(entries)).Msg("Indexed chunks")
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, text string, topK int, filters map[string]string) ([]models.Hit, error) {
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil || len(vector) == 0 {
		log.Error().Err(err).Msg("Query embedding failed, returning empty result")
		return nil, nil
	}
	if topK <= 0 {
		return nil, nil
	}

	q := s.db.NewSelect().
		Model((*chunkEntry)(nil)).
		Column("id", "content", "metadata").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(vector)).
		OrderExpr("distance ASC").
		Limit(topK)
	for k, v := range filters {
		q = q.Where("metadata->>? = ?", k, v)
	}

	var rows []chunkDistanceRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	hits := make([]models.Hit, len(rows))
	for i, row := range rows {
		var meta map[string]string
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &meta); err != nil {
				log.Warn().Err(err).Str("id", row.ID).Msg("Skipping undecodable metadata")
			}
		}
		hits[i] = models.Hit{
			Text:     row.Content,
			Distance: row.Distance,
			Metadata: meta,
		}
	}
	return hits, nil
}
