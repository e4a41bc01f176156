// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/emptylab/driftbottle/internal/agent"
	"github.com/emptylab/driftbottle/internal/chain"
	"github.com/emptylab/driftbottle/internal/config"
	openaiembed "github.com/emptylab/driftbottle/internal/embed/openai"
	"github.com/emptylab/driftbottle/internal/ingest"
	"github.com/emptylab/driftbottle/internal/retrieve"
	"github.com/emptylab/driftbottle/internal/server"
	"github.com/emptylab/driftbottle/internal/store"
	"github.com/emptylab/driftbottle/internal/store/sqlite"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// Service holds all wired subsystems and manages their lifecycle.
type Service struct {
	Server *server.Server
	Store  store.BottleStore
}

// WireService creates all subsystems and wires them together.
func WireService(cfg *config.Config) (*Service, error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, drifterr.Errorf(drifterr.CodeCLISetupFailure, "creating data directory: %w", err)
		}
	}

	bs, err := sqlite.Open(cfg.Storage.Path, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, drifterr.Wrap(err, drifterr.CodeCLISetupFailure, "opening vector store")
	}

	embedder, err := openaiembed.New(openaiembed.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		_ = bs.Close()
		return nil, drifterr.Wrap(err, drifterr.CodeCLISetupFailure, "creating embedder")
	}

	ingestor := ingest.New(bs, embedder)
	retriever := retrieve.New(bs, embedder)

	storyAgent, err := agent.New(agent.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.Chat.Model,
		RetrievalModel: cfg.Chat.RetrievalModel,
	}, retriever)
	if err != nil {
		_ = bs.Close()
		return nil, drifterr.Wrap(err, drifterr.CodeCLISetupFailure, "creating agent")
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		_ = bs.Close()
		return nil, drifterr.Wrap(err, drifterr.CodeCLISetupFailure, "creating server")
	}

	srv.RegisterServices(&server.Services{
		Ingestor: ingestor,
		Agent:    storyAgent,
		Verifier: chain.NewVerifier(chain.DefaultFullnodeURL),
	})

	return &Service{Server: srv, Store: bs}, nil
}

// Close releases the service's resources.
func (s *Service) Close() error {
	return s.Store.Close()
}
