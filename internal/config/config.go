package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"document-qa/internal/models"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Document  DocumentConfig  `yaml:"document" envPrefix:"DOCUMENT_"`
	RAG       RAGConfig       `yaml:"rag" envPrefix:"RAG_"`
	Embedding EmbeddingConfig `yaml:"embedding" envPrefix:"EMBEDDING_"`
	Index     IndexConfig     `yaml:"index" envPrefix:"INDEX_"`
	LLM       LLMConfig       `yaml:"llm"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

type DocumentConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type RAGConfig struct {
	Strategy  string `yaml:"strategy" env:"STRATEGY"`
	ChunkSize int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
	TopK      int    `yaml:"top_k" env:"TOP_K"`
	// Domain is the subject the assistant persona specializes in.
	Domain string `yaml:"domain" env:"DOMAIN"`
	// QueryCacheTTL memoizes query embeddings for the vector strategy; 0 disables.
	QueryCacheTTL time.Duration `yaml:"query_cache_ttl" env:"QUERY_CACHE_TTL"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider" env:"PROVIDER"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	Model    string `yaml:"model" env:"MODEL"`
	APIKey   string `yaml:"api_key" env:"API_KEY"`
}

type IndexConfig struct {
	Type string `yaml:"type" env:"TYPE"`
}

// LLMConfig has no env prefix so the credential keeps its conventional name.
type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"TOGETHER_API_KEY"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

const (
	DefaultChunkSize = 500
	DefaultTopK      = 3

	EmbeddingTFIDF  = "tfidf"
	EmbeddingOllama = "ollama"
	EmbeddingOpenAI = "openai"

	IndexFlat    = "flat"
	IndexChromem = "chromem"

	LLMProviderHTTP      = "http"
	LLMProviderLangchain = "langchain"
)

// Default returns the documented defaults. The LLM credential is intentionally empty.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Document: DocumentConfig{Path: "a320training.pdf"},
		RAG: RAGConfig{
			Strategy:      models.StrategyVector,
			ChunkSize:     DefaultChunkSize,
			TopK:          DefaultTopK,
			Domain:        "Airbus A320 training materials",
			QueryCacheTTL: 10 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Provider: EmbeddingTFIDF,
			BaseURL:  "http://localhost:11434",
			Model:    "all-minilm",
		},
		Index: IndexConfig{Type: IndexFlat},
		LLM: LLMConfig{
			Provider:    LLMProviderHTTP,
			BaseURL:     "https://api.together.xyz/v1",
			Model:       "meta-llama/Llama-3.3-70B-Instruct-Turbo",
			Temperature: 0.7,
			MaxTokens:   300,
			Timeout:     30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig layers defaults, the YAML file at path (optional), a .env file
// (optional) and the process environment, then validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is LoadConfig without validation. Callers that only read the document
// settings use it so no LLM credential is needed.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults and environment only
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env is a convenience for local runs; real deployments set the environment.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once, wrapped in ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "server.addr must be set")
	}
	if c.RAG.ChunkSize <= 0 {
		problems = append(problems, fmt.Sprintf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize))
	}
	if c.RAG.TopK <= 0 {
		problems = append(problems, fmt.Sprintf("rag.top_k must be positive, got %d", c.RAG.TopK))
	}
	switch c.RAG.Strategy {
	case models.StrategyVector, models.StrategyKeyword:
	default:
		problems = append(problems, fmt.Sprintf("rag.strategy must be %q or %q, got %q", models.StrategyVector, models.StrategyKeyword, c.RAG.Strategy))
	}
	if c.RAG.QueryCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("rag.query_cache_ttl must not be negative, got %s", c.RAG.QueryCacheTTL))
	}
	if c.RAG.Strategy == models.StrategyVector {
		switch c.Embedding.Provider {
		case EmbeddingTFIDF, EmbeddingOllama, EmbeddingOpenAI:
		default:
			problems = append(problems, fmt.Sprintf("unknown embedding.provider %q", c.Embedding.Provider))
		}
		switch c.Index.Type {
		case IndexFlat, IndexChromem:
		default:
			problems = append(problems, fmt.Sprintf("unknown index.type %q", c.Index.Type))
		}
	}

	switch c.LLM.Provider {
	case LLMProviderHTTP, LLMProviderLangchain:
	default:
		problems = append(problems, fmt.Sprintf("unknown llm.provider %q", c.LLM.Provider))
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "llm api key is required (TOGETHER_API_KEY)")
	}
	if c.LLM.BaseURL == "" {
		problems = append(problems, "llm.base_url must be set")
	}
	if c.LLM.Model == "" {
		problems = append(problems, "llm.model must be set")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		problems = append(problems, fmt.Sprintf("llm.temperature must be within [0, 1], got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("llm.timeout must be positive, got %s", c.LLM.Timeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", models.ErrInvalidConfiguration, strings.Join(problems, "\n  - "))
	}
	return nil
}
