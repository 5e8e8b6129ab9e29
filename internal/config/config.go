package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig configures the external generation service.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// EmbeddingConfig configures the text-embedding function.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkSize           int      `yaml:"chunk_size"`
	ChunkOverlap        int      `yaml:"chunk_overlap"`
	TopK                int      `yaml:"top_k"`
	SupportedExtensions []string `yaml:"supported_extensions"`
}

// StoreConfig configures vector store persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	RAG       RAGConfig       `yaml:"rag"`
	Store     StoreConfig     `yaml:"store"`
}

// Load reads a YAML config file, fills in defaults and pulls missing
// credentials from the environment (.env files are honored).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	_ = godotenv.Load()

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1000
	}
	if cfg.LLM.Key == "" {
		cfg.LLM.Key = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Embedding.Key == "" {
		cfg.Embedding.Key = cfg.LLM.Key
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if len(cfg.RAG.SupportedExtensions) == 0 {
		cfg.RAG.SupportedExtensions = []string{".pdf", ".txt", ".docx", ".xlsx", ".xml", ".htm"}
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "vector_store"
	}
}

// Validate checks that everything needed before the first query is
// present. Must be called before the pipeline is built.
func (c *Config) Validate() error {
	if c.LLM.Provider == "openai" && c.LLM.Key == "" {
		return errors.New("generation service key is required (set llm.key or OPENAI_API_KEY)")
	}
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d", c.RAG.ChunkSize)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", c.Embedding.Dimension)
	}
	return nil
}
