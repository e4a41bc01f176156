// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/emptylab/driftbottle/internal/ingest"
	"github.com/emptylab/driftbottle/internal/store"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps passages in memory, keyed by (owner, title).
type fakeStore struct {
	rows      []store.EmbeddedPassage
	findErr   error
	upsertErr error
}

func (f *fakeStore) Upsert(_ context.Context, rows []store.EmbeddedPassage) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStore) Search(context.Context, []float32, int) ([]store.Match, error) {
	return nil, nil
}

func (f *fakeStore) FindByOwnerTitle(_ context.Context, owner, title string) ([]store.Passage, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []store.Passage
	for _, r := range f.rows {
		if r.Owner == owner && r.Title == title {
			out = append(out, r.Passage)
		}
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeEmbedder returns unit vectors and counts calls.
type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func TestIngest_StoresChunkedPassages(t *testing.T) {
	fs := &fakeStore{}
	fe := &fakeEmbedder{}
	ing := ingest.New(fs, fe, ingest.WithStride(2))

	err := ing.Ingest(context.Background(), "0xabc", "rain", "one two three four five")
	require.NoError(t, err)

	require.Len(t, fs.rows, 3)
	for i, r := range fs.rows {
		assert.Equal(t, fmt.Sprintf("rain-%d", i), r.Title)
		assert.Equal(t, "0xabc", r.Owner)
		assert.NotEmpty(t, r.Embedding)
	}
	assert.Equal(t, "one two three four five",
		strings.Join([]string{fs.rows[0].Content, fs.rows[1].Content, fs.rows[2].Content}, " "))
	assert.Equal(t, 1, fe.calls)
}

func TestIngest_SecondSubmissionIsDuplicate(t *testing.T) {
	fs := &fakeStore{}
	fe := &fakeEmbedder{}
	ing := ingest.New(fs, fe)

	require.NoError(t, ing.Ingest(context.Background(), "0xabc", "rain", "hello world"))
	stored := len(fs.rows)

	err := ing.Ingest(context.Background(), "0xabc", "rain", "hello world")
	require.Error(t, err)
	assert.True(t, drifterr.IsDuplicateSubmission(err))

	// No embedding call and no write happened for the rejected submission.
	assert.Equal(t, 1, fe.calls)
	assert.Len(t, fs.rows, stored)
}

func TestIngest_SameTitleDifferentOwnerIsNotDuplicate(t *testing.T) {
	fs := &fakeStore{}
	ing := ingest.New(fs, &fakeEmbedder{})

	require.NoError(t, ing.Ingest(context.Background(), "0xabc", "rain", "hello"))
	require.NoError(t, ing.Ingest(context.Background(), "0xdef", "rain", "hello"))
	assert.Len(t, fs.rows, 2)
}

func TestIngest_EmptyContentStoresNothing(t *testing.T) {
	fs := &fakeStore{}
	fe := &fakeEmbedder{}
	ing := ingest.New(fs, fe)

	require.NoError(t, ing.Ingest(context.Background(), "0xabc", "rain", "   "))
	assert.Empty(t, fs.rows)
	assert.Zero(t, fe.calls)
}

func TestIngest_EmbeddingFailureWritesNothing(t *testing.T) {
	fs := &fakeStore{}
	fe := &fakeEmbedder{err: drifterr.New(drifterr.CodeEmbedUpstreamFailure, "batch failed")}
	ing := ingest.New(fs, fe)

	err := ing.Ingest(context.Background(), "0xabc", "rain", "hello world")
	require.Error(t, err)
	assert.Equal(t, drifterr.CodeEmbedUpstreamFailure, drifterr.CodeOf(err))
	assert.Empty(t, fs.rows)
}

func TestIngest_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	fs := &fakeStore{findErr: boom}
	ing := ingest.New(fs, &fakeEmbedder{})

	err := ing.Ingest(context.Background(), "0xabc", "rain", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestIngest_InvalidStride(t *testing.T) {
	ing := ingest.New(&fakeStore{}, &fakeEmbedder{}, ingest.WithStride(-1))

	err := ing.Ingest(context.Background(), "0xabc", "rain", "hello")
	require.Error(t, err)
	assert.Equal(t, drifterr.CodeChunkInvalidStride, drifterr.CodeOf(err))
}
