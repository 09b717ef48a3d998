package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

// fakeEmbedder maps known texts to fixed unit vectors so distances are
// deterministic: identical direction has distance 0, orthogonal 1.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	return f.vectors[text], nil
}

func testStore(t *testing.T, embedder *fakeEmbedder) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(&config.VectorStoreConfig{
		Collection: "test",
		InMemory:   true,
	}, embedder)
	require.NoError(t, err)
	return store
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ChunkID: "c1", Source: "a.txt", Content: "alpha", Metadata: map[string]string{models.MetadataDocType: "text"}},
		{ChunkID: "c2", Source: "b.csv", Content: "beta", Metadata: map[string]string{models.MetadataDocType: "csv"}},
	}
}

func testVectors() map[string][]float32 {
	return map[string][]float32{
		"alpha":       {1, 0, 0},
		"beta":        {0, 1, 0},
		"near alpha":  {1, 0, 0},
		"mixed query": {0.6, 0.8, 0},
	}
}

func TestChromemStore_IsEmptyAndCount(t *testing.T) {
	store := testStore(t, &fakeEmbedder{vectors: testVectors()})
	ctx := context.Background()

	assert.True(t, store.IsEmpty(ctx))
	assert.Zero(t, store.Count(ctx))

	require.NoError(t, store.Index(ctx, testChunks()))
	assert.False(t, store.IsEmpty(ctx))
	assert.Equal(t, 2, store.Count(ctx))
}

func TestChromemStore_Index_EmptyInputIsNoop(t *testing.T) {
	store := testStore(t, &fakeEmbedder{vectors: testVectors()})
	require.NoError(t, store.Index(context.Background(), nil))
	assert.True(t, store.IsEmpty(context.Background()))
}

func TestChromemStore_Index_EmbeddingFailureAborts(t *testing.T) {
	embedder := &fakeEmbedder{vectors: testVectors(), fail: true}
	store := testStore(t, embedder)

	err := store.Index(context.Background(), testChunks())
	require.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.True(t, store.IsEmpty(context.Background()), "no partial writes on embedding failure")
}

func TestChromemStore_Query(t *testing.T) {
	store := testStore(t, &fakeEmbedder{vectors: testVectors()})
	ctx := context.Background()
	require.NoError(t, store.Index(ctx, testChunks()))

	t.Run("nearest entry first with both distances ascending", func(t *testing.T) {
		hits, err := store.Query(ctx, "near alpha", 2, nil)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "alpha", hits[0].Text)
		assert.InDelta(t, 0.0, hits[0].Distance, 1e-5)
		assert.Equal(t, "beta", hits[1].Text)
		assert.InDelta(t, 1.0, hits[1].Distance, 1e-5)
	})

	t.Run("metadata carries source and doc type", func(t *testing.T) {
		hits, err := store.Query(ctx, "near alpha", 1, nil)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "a.txt", hits[0].Metadata[models.MetadataSource])
		assert.Equal(t, "text", hits[0].Metadata[models.MetadataDocType])
	})

	t.Run("topK above entry count is clamped", func(t *testing.T) {
		hits, err := store.Query(ctx, "mixed query", 10, nil)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("exact-match metadata filter", func(t *testing.T) {
		hits, err := store.Query(ctx, "mixed query", 2, map[string]string{models.MetadataDocType: "csv"})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "beta", hits[0].Text)
	})

	t.Run("embedding failure yields empty result without error", func(t *testing.T) {
		failing := testStore(t, &fakeEmbedder{vectors: testVectors(), fail: true})
		hits, err := failing.Query(ctx, "near alpha", 2, nil)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestChromemStore_Query_EmptyIndex(t *testing.T) {
	store := testStore(t, &fakeEmbedder{vectors: testVectors()})
	hits, err := store.Query(context.Background(), "near alpha", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
