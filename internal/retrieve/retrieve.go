// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package retrieve runs similarity queries over the bottle store, filters
// low-confidence matches, and converts the survivors to and from the
// delimited text block handed to the conversational agent.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emptylab/driftbottle/internal/embed"
	"github.com/emptylab/driftbottle/internal/store"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// similarityThreshold is the minimum cosine similarity for a match to
// be surfaced. Matches at exactly the threshold are dropped.
const similarityThreshold = 0.7

// DefaultSampleSize is the number of nearest neighbors fetched per query.
const DefaultSampleSize = 2

// NoMatchSentinel is returned when no match clears the threshold. It is a
// recognized value, not an error; decoding it yields zero results.
const NoMatchSentinel = "No highly similar passages about this topic."

// Retriever embeds queries and filters store matches.
type Retriever struct {
	store    store.BottleStore
	embedder embed.Embedder
	logger   *slog.Logger
}

// New creates a Retriever over the given store and embedder.
func New(bs store.BottleStore, e embed.Embedder) *Retriever {
	return &Retriever{store: bs, embedder: e, logger: slog.Default()}
}

// Retrieve embeds query, fetches the top sampleSize matches (default 2),
// drops every match with score <= 0.7, optionally restricts to owner, and
// serializes the survivors. When nothing survives the filter it returns
// NoMatchSentinel.
func (r *Retriever) Retrieve(ctx context.Context, query, owner string, sampleSize int) (string, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", drifterr.Errorf(drifterr.CodeEmbedUpstreamFailure,
			"embedding result mismatch: expected 1, received %d", len(vectors))
	}

	matches, err := r.store.Search(ctx, vectors[0], sampleSize)
	if err != nil {
		return "", err
	}

	var accepted []store.Match
	for _, m := range matches {
		r.logger.Debug("retrieval candidate", "id", m.Passage.ID, "score", m.Score)
		if m.Score <= similarityThreshold {
			continue
		}
		if owner != "" && m.Passage.Owner != owner {
			continue
		}
		accepted = append(accepted, m)
	}

	return Encode(accepted), nil
}

// Encode serializes matches into the delimited text block consumed by the
// agent, one tagged record per match separated by two blank lines. An
// empty match set encodes to NoMatchSentinel.
func Encode(matches []store.Match) string {
	if len(matches) == 0 {
		return NoMatchSentinel
	}

	var sb strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&sb, "**id**: %s\n**User**: %s\n**title**: %s\n**content**: %s",
			m.Passage.ID, m.Passage.Owner, m.Passage.Title, m.Passage.Content)
		sb.WriteString("\n\n\n")
	}
	return sb.String()
}
