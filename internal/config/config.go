package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection details for one model endpoint. The same shape
// serves the embedding endpoint and the inference endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type Config struct {
	Port     string    `yaml:"port"`
	DataDir  string    `yaml:"data_dir"`
	IndexDir string    `yaml:"index_dir"`
	RAG      RAGConfig `yaml:"rag"`
	EmbedLLM LLMConfig `yaml:"embed_llm"`
	InferLLM LLMConfig `yaml:"infer_llm"`
}

// Load builds the configuration from defaults, an optional yaml file at
// path, and finally environment variables (a .env file is honored). Env
// values win over the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be non-negative and strictly less than chunk size %d",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", c.RAG.TopK)
	}
	return nil
}

// Redacted returns a copy safe for logging, with API keys masked.
func (c *Config) Redacted() Config {
	out := *c
	out.EmbedLLM.Key = maskKey(out.EmbedLLM.Key)
	out.InferLLM.Key = maskKey(out.InferLLM.Key)
	return out
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return "***"
}

func defaultConfig() *Config {
	return &Config{
		Port:     "8000",
		DataDir:  "data",
		IndexDir: "models",
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         3,
		},
		EmbedLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		InferLLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.hyperbolic.xyz/v1",
			Model:    "openai/gpt-oss-20b",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("APP_PORT", cfg.Port)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.IndexDir = getEnv("INDEX_DIR", cfg.IndexDir)

	cfg.RAG.ChunkSize = getEnvAsInt("CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.RAG.ChunkOverlap = getEnvAsInt("CHUNK_OVERLAP", cfg.RAG.ChunkOverlap)
	cfg.RAG.TopK = getEnvAsInt("TOP_K", cfg.RAG.TopK)

	cfg.EmbedLLM.Provider = getEnv("EMBED_PROVIDER", cfg.EmbedLLM.Provider)
	cfg.EmbedLLM.BaseURL = getEnv("EMBED_BASE_URL", cfg.EmbedLLM.BaseURL)
	cfg.EmbedLLM.Key = getEnv("EMBED_API_KEY", cfg.EmbedLLM.Key)
	cfg.EmbedLLM.Model = getEnv("EMBED_MODEL", cfg.EmbedLLM.Model)

	cfg.InferLLM.BaseURL = getEnv("LLM_BASE_URL", cfg.InferLLM.BaseURL)
	cfg.InferLLM.Key = getEnv("LLM_API_KEY", cfg.InferLLM.Key)
	cfg.InferLLM.Model = getEnv("LLM_MODEL", cfg.InferLLM.Model)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
