// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package store

// Passage is the stored, embeddable unit: one bounded-size chunk of a
// submitted drift bottle. Created once at ingest, never mutated.
type Passage struct {
	// ID is a process-unique identifier assigned at chunk time.
	ID string
	// Owner is an opaque tag identifying the submitter (e.g. wallet address).
	Owner string
	// Title is "{base}-{ordinal}" with a zero-based ordinal per passage.
	Title string
	// Content is a contiguous slice of the submission's tokens.
	Content string
}

// EmbeddedPassage pairs a passage with its embedding vector for upsert.
type EmbeddedPassage struct {
	Passage
	Embedding []float32
}

// Match is one retrieval result: a stored passage with its similarity
// score in [0, 1]. Produced per query, never persisted.
type Match struct {
	Score   float64
	Passage Passage
}
