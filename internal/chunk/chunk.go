// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package chunk splits raw submission text into word-level tokens and
// groups them into bounded passages ready for embedding.
package chunk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/emptylab/driftbottle/internal/store"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// DefaultStride is the maximum token count per passage. Passage length is
// measured in word-level tokens, not characters.
const DefaultStride = 510

// Tokens splits text into maximal whitespace-delimited runs, preserving
// token text and order. This is a lexical split, not a linguistic one.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// Split chunks text into passages of at most stride tokens, in order and
// non-overlapping; the final passage may be shorter. Each passage gets a
// fresh UUID and the title "{baseTitle}-{ordinal}" with ordinals counting
// up from 0. Empty input yields no passages.
func Split(owner, baseTitle, text string, stride int) ([]store.Passage, error) {
	if stride <= 0 {
		return nil, drifterr.Errorf(drifterr.CodeChunkInvalidStride, "stride must be positive, got %d", stride)
	}

	tokens := Tokens(text)

	var passages []store.Passage
	for start := 0; start < len(tokens); start += stride {
		end := min(start+stride, len(tokens))

		passages = append(passages, store.Passage{
			ID:      uuid.NewString(),
			Owner:   owner,
			Title:   fmt.Sprintf("%s-%d", baseTitle, len(passages)),
			Content: strings.Join(tokens[start:end], " "),
		})
	}

	return passages, nil
}
