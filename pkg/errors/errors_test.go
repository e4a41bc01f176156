// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	drifterr "github.com/emptylab/driftbottle/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := drifterr.New(
		drifterr.CodeIngestDuplicateSubmission,
		"already stored",
		drifterr.FieldOwner("0xabc"),
		drifterr.FieldTitle("midnight-run"),
	)

	require.Error(t, err)
	assert.Equal(t, drifterr.CodeIngestDuplicateSubmission, drifterr.CodeOf(err))
	assert.True(t, drifterr.IsDuplicateSubmission(err))

	fields := drifterr.FieldsOf(err)
	assert.Equal(t, "0xabc", fields["owner"])
	assert.Equal(t, "midnight-run", fields["title"])
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := drifterr.Errorf(drifterr.CodeChunkInvalidStride, "stride must be positive, got %d", -3)
	require.Error(t, err)
	assert.Equal(t, drifterr.CodeChunkInvalidStride, drifterr.CodeOf(err))
	assert.Contains(t, err.Error(), "stride must be positive, got -3")
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("disk full")
	err := drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "write failed: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, drifterr.CodeStoreDatabaseFailure, drifterr.CodeOf(err))
}

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("dial tcp: connection refused")
	err := drifterr.Wrap(root, drifterr.CodeStoreConnectionFailure, "opening store",
		drifterr.Field("path", "data/vector_store.db"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, drifterr.CodeStoreConnectionFailure, drifterr.CodeOf(err))
	assert.Equal(t, "data/vector_store.db", drifterr.FieldsOf(err)["path"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, drifterr.Wrap(nil, drifterr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, drifterr.Wrapf(nil, drifterr.CodeServerInternalFailure, "ignored %s", "arg"))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, drifterr.Code(""), drifterr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, drifterr.Code(""), drifterr.CodeOf(nil))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, drifterr.IsInvalidInput(drifterr.New(drifterr.CodeChunkInvalidStride, "bad stride")))
	assert.True(t, drifterr.IsInvalidInput(drifterr.New(drifterr.CodeConfigMissingValue, "missing")))
	assert.True(t, drifterr.IsUpstreamFailure(drifterr.New(drifterr.CodeEmbedUpstreamFailure, "batch failed")))
	assert.True(t, drifterr.IsUpstreamFailure(drifterr.New(drifterr.CodeAgentCompletionFailure, "model down")))
	assert.True(t, drifterr.IsMalformedResult(drifterr.New(drifterr.CodeRetrieveDecodeMalformed, "tag without value")))
	assert.False(t, drifterr.IsDuplicateSubmission(drifterr.New(drifterr.CodeStoreDatabaseFailure, "boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate", drifterr.New(drifterr.CodeIngestDuplicateSubmission, "dup"), http.StatusConflict},
		{"invalid input", drifterr.New(drifterr.CodeServerRequestInvalid, "bad"), http.StatusBadRequest},
		{"invalid stride", drifterr.New(drifterr.CodeChunkInvalidStride, "bad"), http.StatusBadRequest},
		{"upstream", drifterr.New(drifterr.CodeEmbedUpstreamFailure, "down"), http.StatusBadGateway},
		{"fallthrough", drifterr.New(drifterr.CodeStoreDatabaseFailure, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drifterr.HTTPStatus(tt.err))
		})
	}
}
