// Package config loads service configuration. Values come from an
// optional YAML file, overridden by environment variables; a .env file
// is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration shared by the binaries.
type Config struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`

	Gemini GeminiConfig `yaml:"gemini"`
	Qdrant QdrantConfig `yaml:"qdrant"`
	Neo4j  Neo4jConfig  `yaml:"neo4j"`
	NATS   NATSConfig   `yaml:"nats"`
	RAG    RAGConfig    `yaml:"rag"`
}

// GeminiConfig configures the Generative Language API client. The API
// key is only ever read from the environment.
type GeminiConfig struct {
	BaseURL    string  `yaml:"base_url"`
	EmbedModel string  `yaml:"embed_model"`
	GenModel   string  `yaml:"gen_model"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	APIKey     string  `yaml:"-"`
}

// QdrantConfig configures the vector store connection.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

// Neo4jConfig configures the document catalog connection.
type Neo4jConfig struct {
	URL  string `yaml:"url"`
	User string `yaml:"user"`
	Pass string `yaml:"-"`
}

// NATSConfig configures the ingest queue connection.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RAGConfig tunes retrieval.
type RAGConfig struct {
	TopK    int `yaml:"top_k"`
	AskTopK int `yaml:"ask_top_k"`
}

// Load reads configuration. A missing YAML file is not an error; the
// environment alone is enough to run.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// fall through to env and defaults
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.CORSOrigin = envOr("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.Gemini.BaseURL = envOr("GEMINI_BASE_URL", cfg.Gemini.BaseURL)
	cfg.Gemini.EmbedModel = envOr("GEMINI_EMBED_MODEL", cfg.Gemini.EmbedModel)
	cfg.Gemini.GenModel = envOr("GEMINI_GEN_MODEL", cfg.Gemini.GenModel)
	cfg.Gemini.APIKey = envOr("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Qdrant.URL = envOr("QDRANT_URL", cfg.Qdrant.URL)
	cfg.Qdrant.Collection = envOr("QDRANT_COLLECTION", cfg.Qdrant.Collection)
	cfg.Neo4j.URL = envOr("NEO4J_URL", cfg.Neo4j.URL)
	cfg.Neo4j.User = envOr("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Pass = envOr("NEO4J_PASS", cfg.Neo4j.Pass)
	cfg.NATS.URL = envOr("NATS_URL", cfg.NATS.URL)
}

func applyDefaults(cfg *Config) {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&cfg.Port, "8080")
	def(&cfg.CORSOrigin, "*")
	def(&cfg.Qdrant.URL, "localhost:6334")
	def(&cfg.Qdrant.Collection, "lexguard")
	def(&cfg.Neo4j.URL, "neo4j://localhost:7687")
	def(&cfg.Neo4j.User, "neo4j")
	def(&cfg.Neo4j.Pass, "password")
	def(&cfg.NATS.URL, "nats://localhost:4222")
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.AskTopK <= 0 {
		cfg.RAG.AskTopK = 3
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
