// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/emptylab/driftbottle/internal/retrieve"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// noSimilarStatus is reported when retrieval finds nothing above the
// similarity bar. The spelling is part of the public API contract.
const noSimilarStatus = "Sorry, we haven't found any similar exprience as you have now."

// placeholderScore is returned for valid graded bottles until real
// grading lands.
// TODO: replace with model-based grading of the bottle content.
const placeholderScore = 98

// RegisterServices sets the handler dependencies and registers the
// domain routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/api/chat",
		Summary:     "Talk to the bartender",
		Tags:        []string{"chat"},
	}, s.handleChat)

	huma.Register(s.api, huma.Operation{
		OperationID: "store-drift",
		Method:      http.MethodPost,
		Path:        "/api/store_drift",
		Summary:     "Store a drift bottle",
		Tags:        []string{"bottles"},
	}, s.handleStoreDrift)

	// Path spelling is inherited API surface; clients depend on it.
	huma.Register(s.api, huma.Operation{
		OperationID: "retrive-drift",
		Method:      http.MethodPost,
		Path:        "/api/retrive_drift",
		Summary:     "Retrieve similar drift bottles",
		Tags:        []string{"bottles"},
	}, s.handleRetriveDrift)

	huma.Register(s.api, huma.Operation{
		OperationID: "grade-drift",
		Method:      http.MethodPost,
		Path:        "/api/grade_drift",
		Summary:     "Grade a drift bottle after payment",
		Tags:        []string{"bottles"},
	}, s.handleGradeDrift)
}

// ChatInput is a chat prompt from a wallet holder.
type ChatInput struct {
	Body struct {
		Wallet  string `json:"wallet" doc:"Caller wallet address"`
		Content string `json:"content" doc:"Chat message"`
		TxHash  string `json:"tx_hash,omitempty" doc:"Payment transaction hash"`
	}
}

// ChatBody carries the agent reply.
type ChatBody struct {
	Status        string `json:"status"`
	AgentResponse string `json:"agent_response"`
}

// ChatResponse wraps the chat reply.
type ChatResponse struct {
	Body ChatBody
}

func (s *Server) handleChat(ctx context.Context, in *ChatInput) (*ChatResponse, error) {
	reply, err := s.services.Agent.Chat(ctx, in.Body.Content)
	if err != nil {
		slog.Error("chat completion failed", "wallet", in.Body.Wallet, "error", err)
		return nil, huma.NewError(drifterr.HTTPStatus(err), "chat completion failed")
	}
	return &ChatResponse{Body: ChatBody{Status: "success", AgentResponse: reply}}, nil
}

// StoreDriftInput is a story submission.
type StoreDriftInput struct {
	Body struct {
		Wallet  string `json:"wallet" doc:"Author wallet address"`
		Title   string `json:"title" doc:"Story title"`
		Content string `json:"content" doc:"Story text"`
	}
}

// Storage failures surface in the status string with HTTP 200, not as
// an HTTP error. Clients check the status prefix.
func (s *Server) handleStoreDrift(ctx context.Context, in *StoreDriftInput) (*GeneralResponse, error) {
	err := s.services.Ingestor.Ingest(ctx, in.Body.Wallet, in.Body.Title, in.Body.Content)
	if err != nil {
		slog.Warn("store drift failed", "wallet", in.Body.Wallet, "title", in.Body.Title, "error", err)
		return &GeneralResponse{Body: GeneralBody{Status: "Error: " + err.Error()}}, nil
	}
	return &GeneralResponse{Body: GeneralBody{Status: "success"}}, nil
}

// RetriveInput asks for stories similar to the content.
type RetriveInput struct {
	Body struct {
		Wallet  string `json:"wallet" doc:"Caller wallet address"`
		Content string `json:"content" doc:"Topic or feeling to match against"`
		TxHash  string `json:"tx_hash,omitempty" doc:"Payment transaction hash"`
	}
}

// RetriveBody carries decoded matches.
type RetriveBody struct {
	Status         string            `json:"status"`
	RetriveResults []retrieve.Result `json:"retrive_results"`
}

// RetriveResponse wraps the retrieval result.
type RetriveResponse struct {
	Body RetriveBody
}

func (s *Server) handleRetriveDrift(ctx context.Context, in *RetriveInput) (*RetriveResponse, error) {
	block, err := s.services.Agent.RetrieveStories(ctx, in.Body.Content)
	if err != nil {
		slog.Error("retrieval agent failed", "wallet", in.Body.Wallet, "error", err)
		block = ""
	}

	results, err := retrieve.Decode(block)
	if err != nil {
		slog.Warn("discarding malformed retrieval block", "wallet", in.Body.Wallet, "error", err)
		results = nil
	}

	if len(results) == 0 {
		return &RetriveResponse{Body: RetriveBody{
			Status:         noSimilarStatus,
			RetriveResults: []retrieve.Result{},
		}}, nil
	}

	return &RetriveResponse{Body: RetriveBody{Status: "success", RetriveResults: results}}, nil
}

// GradeInput asks for a paid grading of a bottle.
type GradeInput struct {
	Body struct {
		Title   string `json:"title" doc:"Story title"`
		Content string `json:"content" doc:"Story text"`
		TxHash  string `json:"tx_hash" doc:"Payment transaction hash"`
	}
}

// GradeBody carries the grading verdict.
type GradeBody struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
}

// GradeResponse wraps the grading verdict.
type GradeResponse struct {
	Body GradeBody
}

func (s *Server) handleGradeDrift(ctx context.Context, in *GradeInput) (*GradeResponse, error) {
	valid, err := s.services.Verifier.VerifyTx(ctx, in.Body.TxHash)
	if err != nil {
		slog.Warn("transaction verification errored", "tx_hash", in.Body.TxHash, "error", err)
		valid = false
	}
	if !valid {
		return &GradeResponse{Body: GradeBody{Status: "transaction invalid", Score: -1}}, nil
	}
	return &GradeResponse{Body: GradeBody{Status: "OK", Score: placeholderScore}}, nil
}
