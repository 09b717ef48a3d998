package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.Overlap)
	assert.Equal(t, 50, cfg.Chunker.MinChunkLength)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 0.35, cfg.Retrieval.DistanceThreshold)
	assert.Equal(t, 0.85, cfg.Cache.AdmissionThreshold)
	assert.Equal(t, "chromem", cfg.VectorStore.Type)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
data_dir: /srv/docs
chunker:
  chunk_size: 400
retrieval:
  distance_threshold: 0.5
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", cfg.DataDir)
	assert.Equal(t, 400, cfg.Chunker.ChunkSize)
	assert.Equal(t, 0.5, cfg.Retrieval.DistanceThreshold)
	// Unset values fall back to defaults.
	assert.Equal(t, 100, cfg.Chunker.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
