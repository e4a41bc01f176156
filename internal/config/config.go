// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	drifterr "github.com/emptylab/driftbottle/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level driftbottle configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chat      ChatConfig      `mapstructure:"chat"`
}

// ServerConfig controls how the HTTP server listens.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig locates the SQLite vector database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// OpenAIConfig holds credentials and endpoint for the OpenAI-compatible API
// serving both embeddings and completions.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// EmbeddingConfig selects the embedding model and output dimensionality.
// Dimensions must match the vec0 table declaration; changing it requires
// re-embedding the store.
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// ChatConfig selects the completion models for the conversational agent.
// RetrievalModel is optional and falls back to Model.
type ChatConfig struct {
	Model          string `mapstructure:"model"`
	RetrievalModel string `mapstructure:"retrieval_model"`
}

// SetDefaults installs configuration defaults on the given Viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "0.0.0.0:8080")
	v.SetDefault("storage.path", "data/vector_store.db")
	v.SetDefault("embedding.dimensions", 1024)
}

// SetupEnv binds environment variables with the DRIFT_ prefix
// (e.g. DRIFT_OPENAI_API_KEY overrides openai.api_key). Every key is
// bound explicitly: AutomaticEnv alone does not surface env-only keys
// through Unmarshal, so keys without defaults or file values would
// never be seen.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("DRIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"server.listen",
		"server.cors_origins",
		"storage.path",
		"openai.api_key",
		"openai.base_url",
		"embedding.model",
		"embedding.dimensions",
		"chat.model",
		"chat.retrieval_model",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, drifterr.Errorf(drifterr.CodeConfigReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, drifterr.Errorf(drifterr.CodeConfigInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, drifterr.Errorf(drifterr.CodeConfigMissingValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for missing or malformed values.
// It returns all validation errors found rather than stopping at the first.
// Missing required values are fatal at startup; no request is served.
func (c *Config) Validate() []error {
	var errs []error

	required := []struct {
		key, val string
	}{
		{"openai.api_key", c.OpenAI.APIKey},
		{"openai.base_url", c.OpenAI.BaseURL},
		{"embedding.model", c.Embedding.Model},
		{"chat.model", c.Chat.Model},
		{"storage.path", c.Storage.Path},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, drifterr.Errorf(drifterr.CodeConfigMissingValue,
				"config: %s must not be empty", r.key))
		}
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, drifterr.Errorf(drifterr.CodeConfigInvalidValue,
			"config: embedding.dimensions must be greater than 0, got %d", c.Embedding.Dimensions))
	}

	if c.Server.Listen == "" {
		errs = append(errs, drifterr.Errorf(drifterr.CodeConfigMissingValue, "config: server.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errs = append(errs, drifterr.Errorf(drifterr.CodeConfigInvalidValue,
				"config: server.listen must be a valid host:port address, got %q: %w", c.Server.Listen, err))
		} else if port, err := strconv.Atoi(portStr); err != nil || port < 1 || port > 65535 {
			errs = append(errs, drifterr.Errorf(drifterr.CodeConfigInvalidValue,
				"config: server.listen port must be between 1 and 65535, got %q", portStr))
		}
	}

	return errs
}
