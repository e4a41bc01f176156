// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package ingest runs the drift-bottle ingestion pipeline:
// chunk → dedup check → embed → store.
package ingest

import (
	"context"
	"log/slog"

	"github.com/emptylab/driftbottle/internal/chunk"
	"github.com/emptylab/driftbottle/internal/embed"
	"github.com/emptylab/driftbottle/internal/store"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// Ingestor chunks, embeds, and persists submissions.
type Ingestor struct {
	store    store.BottleStore
	embedder embed.Embedder
	stride   int
	logger   *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithStride overrides the default passage stride.
func WithStride(stride int) Option {
	return func(i *Ingestor) { i.stride = stride }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) { i.logger = logger }
}

// New creates an Ingestor over the given store and embedder.
func New(bs store.BottleStore, e embed.Embedder, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:    bs,
		embedder: e,
		stride:   chunk.DefaultStride,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest stores one submission under (owner, title). A submission already
// present under the same key is rejected before any embedding call or
// store write happens, so duplicates cost nothing upstream. Passages are
// embedded and stored preserving chunk ordinal order.
func (i *Ingestor) Ingest(ctx context.Context, owner, title, content string) error {
	// The ordinal-0 passage stands in for the whole submission.
	existing, err := i.store.FindByOwnerTitle(ctx, owner, title+"-0")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return drifterr.New(drifterr.CodeIngestDuplicateSubmission,
			"this document has already been stored",
			drifterr.FieldOwner(owner),
			drifterr.FieldTitle(title),
		)
	}

	passages, err := chunk.Split(owner, title, content, i.stride)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		i.logger.Warn("ingest skipped empty submission", "owner", owner, "title", title)
		return nil
	}

	texts := make([]string, len(passages))
	for n, p := range passages {
		texts[n] = p.Content
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(passages) {
		return drifterr.Errorf(drifterr.CodeEmbedUpstreamFailure,
			"embedding result mismatch: expected %d, received %d", len(passages), len(vectors))
	}

	rows := make([]store.EmbeddedPassage, len(passages))
	for n, p := range passages {
		rows[n] = store.EmbeddedPassage{Passage: p, Embedding: vectors[n]}
	}

	if err := i.store.Upsert(ctx, rows); err != nil {
		return err
	}

	i.logger.Info("ingested submission", "owner", owner, "title", title, "passages", len(rows))
	return nil
}
