package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solagent/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvMCPHost, "127.0.0.1")
	t.Setenv(EnvMCPPort, "3001")
	t.Setenv(EnvChatAPIKey, "chat-key")
	t.Setenv(EnvEmbedAPIKey, "embed-key")
	t.Setenv(EnvAgentPreamble, "You are a Solidity expert.")
	t.Setenv(EnvRAGDirs, "/docs/v2, /docs/v3,/src/core")
}

func TestLoadEnv(t *testing.T) {
	setRequiredEnv(t)

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3001", env.MCPAddress())
	assert.Equal(t, []string{"/docs/v2", "/docs/v3", "/src/core"}, env.RAGDirs)
	assert.Equal(t, "You are a Solidity expert.", env.Preamble)
}

func TestLoadEnvMissingValueNamesVariable(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvChatAPIKey, "")

	_, err := LoadEnv()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, EnvChatAPIKey, cfgErr.Key)
}

func TestLoadEnvRequiresDirectories(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvRAGDirs, " , ")

	_, err := LoadEnv()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, EnvRAGDirs, cfgErr.Key)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, ".sol", cfg.Chunker.SourceExtension)
	assert.Equal(t, 30, cfg.Retrieval.SampleCount)
	assert.InDelta(t, 0.9, cfg.Retrieval.DistanceThreshold, 1e-9)
	assert.Equal(t, 30000, cfg.Retrieval.MaxContextChars)
	assert.False(t, cfg.Retrieval.ClearHistory)
	assert.Equal(t, 20, cfg.Chat.MaxToolTurns)
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"chunker:\n  max_chunk_size: 500\nretrieval:\n  sample_count: 5\n  clear_history: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkSize)
	assert.Equal(t, 5, cfg.Retrieval.SampleCount)
	assert.True(t, cfg.Retrieval.ClearHistory)
	// Unset values still get defaults.
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, 30000, cfg.Retrieval.MaxContextChars)
}

func TestLoadRejectsNegativeChunkSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  max_chunk_size: -1\n"), 0o644))

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
