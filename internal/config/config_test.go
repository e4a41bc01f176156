// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emptylab/driftbottle/internal/config"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "driftbottle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseConfig = `
openai:
  api_key: "test-key"
  base_url: "https://api.example.com/v1"
chat:
  model: "deepseek-ai/DeepSeek-V3"
`

const validConfig = baseConfig + `
embedding:
  model: "bge-m3"
`

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Listen)
	assert.Equal(t, "data/vector_store.db", cfg.Storage.Path)
	assert.Equal(t, 1024, cfg.Embedding.Dimensions)
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, baseConfig+`
server:
  listen: "127.0.0.1:9999"
storage:
  path: "/tmp/bottles.db"
embedding:
  model: "bge-m3"
  dimensions: 512
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Listen)
	assert.Equal(t, "/tmp/bottles.db", cfg.Storage.Path)
	assert.Equal(t, "bge-m3", cfg.Embedding.Model)
	assert.Equal(t, 512, cfg.Embedding.Dimensions)
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", cfg.Chat.Model)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DRIFT_SERVER_LISTEN", "10.0.0.1:8081")

	cfg, err := config.Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8081", cfg.Server.Listen)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("DRIFT_OPENAI_API_KEY", "env-key")
	t.Setenv("DRIFT_OPENAI_BASE_URL", "https://env.example.com/v1")
	t.Setenv("DRIFT_EMBEDDING_MODEL", "bge-m3")
	t.Setenv("DRIFT_CHAT_MODEL", "deepseek-ai/DeepSeek-V3")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "https://env.example.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "bge-m3", cfg.Embedding.Model)
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", cfg.Chat.Model)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Listen)
}

func TestLoad_EnvOnlyWithoutDefaults(t *testing.T) {
	t.Setenv("DRIFT_OPENAI_API_KEY", "env-key")
	t.Setenv("DRIFT_OPENAI_BASE_URL", "https://env.example.com/v1")
	t.Setenv("DRIFT_EMBEDDING_MODEL", "bge-m3")
	t.Setenv("DRIFT_EMBEDDING_DIMENSIONS", "512")
	t.Setenv("DRIFT_CHAT_MODEL", "deepseek-ai/DeepSeek-V3")
	t.Setenv("DRIFT_CHAT_RETRIEVAL_MODEL", "Qwen/QwQ-32B")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Embedding.Dimensions)
	assert.Equal(t, "Qwen/QwQ-32B", cfg.Chat.RetrievalModel)
}

func TestLoad_MissingRequiredValuesIsFatal(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
embedding:
  model: "bge-m3"
`))
	require.Error(t, err)
	assert.Equal(t, drifterr.CodeConfigMissingValue, drifterr.CodeOf(err))
	assert.Contains(t, err.Error(), "openai.api_key")
	assert.Contains(t, err.Error(), "chat.model")
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, drifterr.CodeConfigReadFailure, drifterr.CodeOf(err))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	errs := cfg.Validate()
	// api_key, base_url, embedding.model, chat.model, storage.path,
	// dimensions, listen.
	assert.Len(t, errs, 7)
}

func TestValidate_ListenAddress(t *testing.T) {
	_, err := config.Load(writeConfig(t, validConfig+`
server:
  listen: "not-an-address"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.listen")
}

func TestValidate_Dimensions(t *testing.T) {
	_, err := config.Load(writeConfig(t, baseConfig+`
embedding:
  model: "bge-m3"
  dimensions: -5
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.dimensions")
}
