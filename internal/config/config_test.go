package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "models", cfg.IndexDir)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "ollama", cfg.EmbedLLM.Provider)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("TOP_K", "7")
	t.Setenv("LLM_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 7, cfg.RAG.TopK)
	assert.Equal(t, "secret", cfg.InferLLM.Key)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\ndata_dir: filedir\n"), 0o644))

	t.Setenv("DATA_DIR", "envdir")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "envdir", cfg.DataDir)
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
}

func TestValidateRejectsBadChunking(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk overlap")

	t.Setenv("CHUNK_OVERLAP", "150")
	_, err = Load("")
	assert.Error(t, err)
}

func TestRedactedMasksKeys(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret-infer")
	t.Setenv("EMBED_API_KEY", "secret-embed")

	cfg, err := Load("")
	require.NoError(t, err)

	red := cfg.Redacted()
	assert.Equal(t, "***", red.InferLLM.Key)
	assert.Equal(t, "***", red.EmbedLLM.Key)
	assert.Empty(t, (&Config{}).Redacted().InferLLM.Key)

	// the original is untouched
	assert.Equal(t, "secret-infer", cfg.InferLLM.Key)
}

func TestValidateRejectsBadTopK(t *testing.T) {
	t.Setenv("TOP_K", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top-k")
}
