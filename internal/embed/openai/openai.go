// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/emptylab/driftbottle/internal/embed"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// Config holds OpenAI embedder configuration. BaseURL points at any
// OpenAI-compatible endpoint serving the configured model.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// Compile-time interface check.
var _ embed.Embedder = (*Embedder)(nil)

// Embedder implements embed.Embedder using the OpenAI embeddings API.
type Embedder struct {
	client openaisdk.Client
	config Config
}

// New creates an Embedder. Returns an error if the API key is missing.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, drifterr.New(drifterr.CodeConfigMissingValue, "openai: missing api_key in config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Embedder{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

// Embed generates embeddings for all texts in one batch call. Output order
// matches input order; any upstream error fails the entire batch.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaisdk.EmbeddingModel(e.config.Model),
	}
	if e.config.Dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(e.config.Dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, drifterr.Errorf(drifterr.CodeEmbedUpstreamFailure, "embedding batch of %d: %w", len(texts), err)
	}

	if len(resp.Data) != len(texts) {
		return nil, drifterr.Errorf(drifterr.CodeEmbedUpstreamFailure,
			"embedding result mismatch: expected %d, received %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, drifterr.Errorf(drifterr.CodeEmbedUpstreamFailure, "embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		vectors[d.Index] = vec
	}

	return vectors, nil
}
