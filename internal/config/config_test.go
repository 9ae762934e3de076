package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Embedding.BaseURL)
	assert.Equal(t, 0.5, cfg.Router.SimilarityThreshold)
	assert.Equal(t, 4, cfg.Router.OffTopicFrequency)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Projects)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
embedding:
  base_url: http://tei.internal:9000
  model: BAAI/bge-base-en-v1.5
router:
  similarity_threshold: 0.65
  top_k_files: 3
logging:
  level: debug
  format: console
projects:
  - /home/dev/topicd
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://tei.internal:9000", cfg.Embedding.BaseURL)
	assert.Equal(t, "BAAI/bge-base-en-v1.5", cfg.Embedding.Model)
	assert.Equal(t, 0.65, cfg.Router.SimilarityThreshold)
	assert.Equal(t, 3, cfg.Router.TopKFiles)
	// Unset file keys keep their defaults.
	assert.Equal(t, 0.7, cfg.Router.OffTopicThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{"/home/dev/topicd"}, cfg.Projects)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
embedding:
  base_url: http://tei.internal:9000
`)
	t.Setenv("TOPICD_EMBEDDING_BASE_URL", "http://tei.override:9100")
	t.Setenv("TOPICD_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://tei.override:9100", cfg.Embedding.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Embedding.BaseURL)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "embedding: [not: valid")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: extreme
`)
	_, err := Load(path)
	assert.Error(t, err)
}
