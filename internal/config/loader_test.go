package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and returns the devtrack config dir.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "devtrack")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `matcher:
  threshold: 0.7
  top_n: 5
  parallel: true
disambiguation:
  auto_accept: 0.9
extraction:
  annotator: none
embeddings:
  provider: tei
  base_url: https://tei.internal:8443
  api_key: tei-secret
  timeout: 3s
logging:
  level: debug
  format: console
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Matcher.Threshold)
	assert.Equal(t, 5, cfg.Matcher.TopN)
	assert.True(t, cfg.Matcher.Parallel)
	assert.Equal(t, 0.5, cfg.Matcher.ManyThreshold, "absent keys keep defaults")
	assert.Equal(t, 0.9, cfg.Disambiguation.AutoAccept)
	assert.Equal(t, AnnotatorNone, cfg.Extraction.Annotator)
	assert.Equal(t, EmbeddingsTEI, cfg.Embeddings.Provider)
	assert.Equal(t, "https://tei.internal:8443", cfg.Embeddings.BaseURL)
	assert.Equal(t, "tei-secret", cfg.Embeddings.APIKey.Value())
	assert.Equal(t, "[REDACTED]", cfg.Embeddings.APIKey.String())
	assert.Equal(t, 3*time.Second, cfg.Embeddings.Timeout)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embeddings.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "matcher:\n  threshold: 0.7\n", 0600)

	t.Setenv("DEVTRACK_MATCHER_THRESHOLD", "0.75")
	t.Setenv("DEVTRACK_MATCHER_MANY_THRESHOLD", "0.45")
	t.Setenv("DEVTRACK_DISAMBIGUATION_AUTO_ACCEPT", "0.85")
	t.Setenv("DEVTRACK_EMBEDDINGS_PROVIDER", "tei")
	t.Setenv("DEVTRACK_EMBEDDINGS_BASE_URL", "http://localhost:9000")
	t.Setenv("DEVTRACK_EMBEDDINGS_TIMEOUT", "2s")
	t.Setenv("DEVTRACK_EMBEDDINGS_RATE_LIMIT", "20")
	t.Setenv("DEVTRACK_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Matcher.Threshold, "env beats file")
	assert.Equal(t, 0.45, cfg.Matcher.ManyThreshold)
	assert.Equal(t, 0.85, cfg.Disambiguation.AutoAccept)
	assert.Equal(t, EmbeddingsTEI, cfg.Embeddings.Provider)
	assert.Equal(t, "http://localhost:9000", cfg.Embeddings.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Embeddings.Timeout)
	assert.Equal(t, 20.0, cfg.Embeddings.RateLimit)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_DefaultPathMissingFile(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "matcher: [threshold\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_Validation(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "matcher:\n  threshold: 1.5\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	setupTestHome(t)
	t.Setenv("DEVTRACK_EXTRACTION_ANNOTATOR", "spacy")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setupTestHome(t)
	t.Setenv("DEVTRACK_EMBEDDINGS_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_PathTraversal(t *testing.T) {
	setupTestHome(t)

	_, err := Load("/tmp/devtrack.yaml")
	assert.ErrorIs(t, err, ErrConfigLocation)
}

func TestLoad_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}

	tests := []struct {
		perm    os.FileMode
		wantErr bool
	}{
		{0600, false},
		{0400, false},
		{0644, true},
		{0666, true},
	}
	for _, tt := range tests {
		t.Run(tt.perm.String(), func(t *testing.T) {
			dir := setupTestHome(t)
			path := writeConfig(t, dir, "logging:\n  level: info\n", tt.perm)

			_, err := Load(path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigPermissions)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	dir := setupTestHome(t)
	padding := bytes.Repeat([]byte("# padding\n"), maxFileSize/10+1)
	path := writeConfig(t, dir, string(padding), 0600)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrConfigTooLarge)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DEVTRACK_MATCHER_THRESHOLD":          "matcher.threshold",
		"DEVTRACK_MATCHER_SEMANTIC_FLOOR":     "matcher.semantic_floor",
		"DEVTRACK_EMBEDDINGS_CACHE_DIR":       "embeddings.cache_dir",
		"DEVTRACK_DISAMBIGUATION_AUTO_ACCEPT": "disambiguation.auto_accept",
		"DEVTRACK_VERBOSE":                    "verbose",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())

	info, err := os.Stat(filepath.Join(home, ".config", "devtrack"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "devtrack", "config.yaml"), path)
}
