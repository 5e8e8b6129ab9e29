package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Contains(t, cfg.RAG.SupportedExtensions, ".pdf")
	assert.Contains(t, cfg.RAG.SupportedExtensions, ".xml")
	assert.Equal(t, "vector_store", cfg.Store.Path)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  key: sk-test
rag:
  chunk_size: 500
  top_k: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.Key)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 3, cfg.RAG.TopK)
	// untouched fields fall back to defaults
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	// embedding key follows the generation key when unset
	assert.Equal(t, "sk-test", cfg.Embedding.Key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg := Default()
	assert.Equal(t, "sk-from-env", cfg.LLM.Key)
	require.NoError(t, cfg.Validate())
}

func TestValidateMissingGenerationKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key is required")
}

func TestValidateOllamaNeedsNoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	cfg.LLM.Provider = "ollama"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadNumbers(t *testing.T) {
	cfg := Default()
	cfg.LLM.Key = "sk-test"

	cfg.RAG.ChunkSize = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Key = "sk-test"
	cfg.Embedding.Dimension = -5
	assert.Error(t, cfg.Validate())
}
