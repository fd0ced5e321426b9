// Package config loads the docent application configuration from a
// YAML file, falling back to defaults when the file is absent.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig configures the record store and blob directory.
type StorageConfig struct {
	DBPath  string `yaml:"db_path"`
	BlobDir string `yaml:"blob_dir"`
}

// AIConfig configures the embedding and generation endpoints.
// Endpoints are OpenAI-compatible; local Ollama works out of the box.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	GenerationHost  string `yaml:"generation_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	GenerationModel string `yaml:"generation_model"`
	TokenEnv        string `yaml:"token_env"`
}

// RetrievalConfig configures the similarity query for chat turns.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float32 `yaml:"min_score"`
}

// IngestionConfig configures document processing.
type IngestionConfig struct {
	MaxChunkChars int    `yaml:"max_chunk_chars"`
	PoolSize      int    `yaml:"pool_size"`
	WatchDir      string `yaml:"watch_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// Load reads a config from a specified path. If the file does not
// exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = "data/db"
	}
	if cfg.Storage.BlobDir == "" {
		cfg.Storage.BlobDir = "data/blobs"
	}
	if cfg.AI.TokenEnv == "" {
		cfg.AI.TokenEnv = "DOCENT_AI_TOKEN"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = 0.5
	}
	if cfg.Ingestion.MaxChunkChars == 0 {
		cfg.Ingestion.MaxChunkChars = 1000
	}
	// AI hosts and models default inside the ai package; pool size
	// defaults inside the pipeline.
}
