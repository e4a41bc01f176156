// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package chain verifies payment transaction hashes against an Aptos
// fullnode. This is thin plumbing around the node's REST API; the core
// pipelines never depend on it.
package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// DefaultFullnodeURL is the Aptos testnet fullnode.
const DefaultFullnodeURL = "https://fullnode.testnet.aptoslabs.com"

// executedStatus is the vm_status a successful user transaction reports.
const executedStatus = "Executed successfully"

// Verifier checks transaction hashes against an Aptos fullnode.
type Verifier struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewVerifier creates a Verifier against the given fullnode URL,
// defaulting to testnet.
func NewVerifier(baseURL string) *Verifier {
	if baseURL == "" {
		baseURL = DefaultFullnodeURL
	}
	return &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
}

// transaction is the subset of the node's transaction representation the
// verifier inspects.
type transaction struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

// VerifyTx reports whether the transaction behind txHash executed
// successfully on chain. A malformed hash is an error; a transaction the
// node cannot produce verifies false. Transactions that are not user
// transactions verify true, since only user transactions carry a
// meaningful execution status here.
func (v *Verifier) VerifyTx(ctx context.Context, txHash string) (bool, error) {
	hash := strings.TrimPrefix(txHash, "0x")
	if len(hash) != 64 {
		return false, drifterr.Errorf(drifterr.CodeChainLookupFailure, "transaction hash must be 32 bytes, got %d chars", len(hash))
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return false, drifterr.Errorf(drifterr.CodeChainLookupFailure, "invalid transaction hash: %w", err)
	}

	url := fmt.Sprintf("%s/v1/transactions/by_hash/0x%s", v.baseURL, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, drifterr.Errorf(drifterr.CodeChainLookupFailure, "building fullnode request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("fullnode unreachable", "hash", txHash, "error", err)
		return false, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("transaction not found", "hash", txHash, "status", resp.StatusCode)
		return false, nil
	}

	var txn transaction
	if err := json.NewDecoder(resp.Body).Decode(&txn); err != nil {
		return false, drifterr.Errorf(drifterr.CodeChainLookupFailure, "decoding transaction %s: %w", txHash, err)
	}

	if txn.Type != "user_transaction" {
		return true, nil
	}

	return txn.Success && txn.VMStatus == executedStatus, nil
}
