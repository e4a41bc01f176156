// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package store

import "context"

// BottleStore persists drift-bottle passages and their embeddings, and
// serves k-nearest-neighbor queries over them.
type BottleStore interface {
	// Upsert writes passages and their vectors in a single transaction;
	// it fails atomically. The passage table and vector index are created
	// lazily on the first call.
	Upsert(ctx context.Context, rows []EmbeddedPassage) error

	// Search returns up to k matches ordered by descending similarity.
	// Ties are broken in backend-native order, which is unspecified.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)

	// FindByOwnerTitle returns passages matching owner and exact title.
	// A store whose schema has not been created yet reports no passages
	// rather than an error; the ingest dedup check depends on this.
	FindByOwnerTitle(ctx context.Context, owner, title string) ([]Passage, error)

	Close() error
}
