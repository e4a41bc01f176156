// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package server

import "context"

// BottleIngestor stores a submitted story in the vector index.
type BottleIngestor interface {
	Ingest(ctx context.Context, owner, title, content string) error
}

// StoryAgent answers chat prompts and runs the retrieval persona.
type StoryAgent interface {
	Chat(ctx context.Context, prompt string) (string, error)
	RetrieveStories(ctx context.Context, prompt string) (string, error)
}

// TxVerifier checks a payment transaction hash on chain.
type TxVerifier interface {
	VerifyTx(ctx context.Context, txHash string) (bool, error)
}

// Services bundles the handler dependencies.
type Services struct {
	Ingestor BottleIngestor
	Agent    StoryAgent
	Verifier TxVerifier
}
