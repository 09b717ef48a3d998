package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one langchaingo backend, either an embedding model
// or an inference model. Type selects the client: "ollama" or "openai".
type LLMConfig struct {
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	Overlap        int `yaml:"overlap"`
	MinChunkLength int `yaml:"min_chunk_length"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type       string `yaml:"type"` // chromem or postgres
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`

	// Postgres backend.
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// RetrievalConfig holds the retrieval and confidence heuristics. The
// distance threshold is tuned against one embedding model; changing the
// model likely invalidates it, which is why it lives in config rather
// than as a constant.
type RetrievalConfig struct {
	TopK              int     `yaml:"top_k"`
	DistanceThreshold float64 `yaml:"distance_threshold"`
}

// CacheConfig bounds the high-confidence answer cache.
type CacheConfig struct {
	Capacity           int     `yaml:"capacity"`
	AdmissionThreshold float64 `yaml:"admission_threshold"`
}

// GeneratorConfig configures answer generation on top of the inference LLM.
type GeneratorConfig struct {
	LLM          LLMConfig `yaml:"llm"`
	TimeoutSecs  int       `yaml:"timeout_secs"`
	MaxTokens    int       `yaml:"max_tokens"`
	ContextChars int       `yaml:"context_chars"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	DataDir     string            `yaml:"data_dir"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Cache       CacheConfig       `yaml:"cache"`
	Server      ServerConfig      `yaml:"server"`
}

// LoadConfig reads the YAML config at path and applies defaults for
// anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config usable without any file on disk.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.EmbedLLM.Type == "" {
		cfg.EmbedLLM.Type = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.Generator.LLM.Type == "" {
		cfg.Generator.LLM.Type = "ollama"
	}
	if cfg.Generator.LLM.BaseURL == "" {
		cfg.Generator.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.Generator.LLM.Model == "" {
		cfg.Generator.LLM.Model = "phi3:mini"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 256
	}
	if cfg.Generator.ContextChars == 0 {
		cfg.Generator.ContextChars = 1500
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 800
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 100
	}
	if cfg.Chunker.MinChunkLength == 0 {
		cfg.Chunker.MinChunkLength = 50
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chromem"
	}
	if cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "./vectordb"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "documents"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.DistanceThreshold == 0 {
		cfg.Retrieval.DistanceThreshold = 0.35
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 256
	}
	if cfg.Cache.AdmissionThreshold == 0 {
		cfg.Cache.AdmissionThreshold = 0.85
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}
