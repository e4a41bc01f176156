// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package embed defines the text-to-vector capability consumed by the
// ingest and retrieval pipelines.
package embed

import "context"

// Embedder maps texts to embedding vectors. Implementations must preserve
// input order and fail the whole batch on any error; partial results are
// never returned. Calls may be slow and rate-limited; callers must not
// assume retries happen here.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
