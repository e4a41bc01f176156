// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

// Package agent layers chat personas over the OpenAI-compatible Chat
// Completions API. The chat agent is a plain persona; the retrieval
// agent carries a search tool that feeds vector store matches back into
// the conversation.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/emptylab/driftbottle/internal/chunk"
	"github.com/emptylab/driftbottle/internal/retrieve"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

const (
	// Short prompts get short answers. Longer prompts get more room so
	// the reply is not clipped mid-sentence.
	chatMaxTokensShort = 64
	chatMaxTokensLong  = 128
	chatPromptCutoff   = 64
	chatTemperature    = 0.9

	retrievalMaxTokens   = 512
	retrievalTemperature = 0.7

	// maxToolIterations bounds the tool loop so a model that keeps
	// requesting searches cannot spin forever.
	maxToolIterations = 4

	toolSearchRelatedStory = "search_related_story"
)

// StorySearcher runs a similarity search and returns the encoded match
// block, or the no-match sentinel.
type StorySearcher interface {
	Retrieve(ctx context.Context, query, owner string, sampleSize int) (string, error)
}

// Config holds agent configuration. RetrievalModel falls back to
// ChatModel when empty.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	RetrievalModel string
}

// Agent serves both personas over one client.
type Agent struct {
	client   openaisdk.Client
	cfg      Config
	searcher StorySearcher
	logger   *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates an Agent. Returns an error if the API key is missing.
func New(cfg Config, searcher StorySearcher, opts ...Option) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, drifterr.New(drifterr.CodeConfigMissingValue, "agent: missing api key")
	}
	if cfg.RetrievalModel == "" {
		cfg.RetrievalModel = cfg.ChatModel
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	a := &Agent{
		client:   openaisdk.NewClient(clientOpts...),
		cfg:      cfg,
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Chat sends a single prompt through the bartender persona and returns
// the reply.
func (a *Agent) Chat(ctx context.Context, prompt string) (string, error) {
	maxTokens := chatMaxTokensShort
	if len(chunk.Tokens(prompt)) > chatPromptCutoff {
		maxTokens = chatMaxTokensLong
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(a.cfg.ChatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(chatSystemPrompt),
			openaisdk.UserMessage(prompt),
		},
		MaxCompletionTokens: param.NewOpt(int64(maxTokens)),
		Temperature:         param.NewOpt(chatTemperature),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", drifterr.Wrap(err, drifterr.CodeAgentCompletionFailure, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", drifterr.New(drifterr.CodeAgentCompletionFailure, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// searchArgs is the argument shape the model supplies when calling the
// search tool.
type searchArgs struct {
	TopicSentence string `json:"topic_sentence"`
	User          string `json:"user"`
}

// RetrieveStories runs the retrieval persona over the prompt. The model
// condenses the prompt into a topic sentence, searches the vector store
// through the tool, and hands back the encoded match block for
// downstream decoding.
func (a *Agent) RetrieveStories(ctx context.Context, prompt string) (string, error) {
	messages := []openaisdk.ChatCompletionMessageParamUnion{
		openaisdk.SystemMessage(retrievalSystemPrompt),
		openaisdk.UserMessage(prompt),
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:               shared.ChatModel(a.cfg.RetrievalModel),
		Messages:            messages,
		MaxCompletionTokens: param.NewOpt(int64(retrievalMaxTokens)),
		Temperature:         param.NewOpt(retrievalTemperature),
		Tools:               []openaisdk.ChatCompletionToolParam{searchStoryTool()},
	}

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", drifterr.Wrap(err, drifterr.CodeAgentCompletionFailure, "retrieval completion failed")
		}
		if len(resp.Choices) == 0 {
			return "", drifterr.New(drifterr.CodeAgentCompletionFailure, "retrieval completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			result, err := a.runTool(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				return "", err
			}
			params.Messages = append(params.Messages, openaisdk.ToolMessage(result, tc.ID))
		}
	}

	return "", drifterr.New(drifterr.CodeAgentCompletionFailure, "tool loop exceeded iteration limit",
		drifterr.Attr{Key: "max_iterations", Value: maxToolIterations})
}

func (a *Agent) runTool(ctx context.Context, name, rawArgs string) (string, error) {
	if name != toolSearchRelatedStory {
		a.logger.Warn("model requested unknown tool", "tool", name)
		return "unknown tool: " + name, nil
	}

	var args searchArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		a.logger.Warn("malformed tool arguments", "tool", name, "error", err)
		return "malformed arguments: " + err.Error(), nil
	}

	a.logger.Debug("running story search", "topic", args.TopicSentence, "user_filter", args.User)
	return a.searcher.Retrieve(ctx, args.TopicSentence, args.User, retrieve.DefaultSampleSize)
}

// searchStoryTool describes the vector search tool to the model.
func searchStoryTool() openaisdk.ChatCompletionToolParam {
	return openaisdk.ChatCompletionToolParam{
		Function: shared.FunctionDefinitionParam{
			Name:        toolSearchRelatedStory,
			Description: param.NewOpt("Search for embeddings-highly-similar stories in the vector database."),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"topic_sentence": map[string]any{
						"type":        "string",
						"description": "The topic and summarized sentence of the user's inquiry, used to match related stories. (e.g. 'Blue emotion, regretful loss of a beloved, looking for comfort and support.')",
					},
					"user": map[string]any{
						"type":        "string",
						"description": "Optional wallet address to restrict the search to one author. (e.g. '0xc4d6C15db36b92dC4776d2Ead5dd31Df86202A3B')",
					},
				},
				"required": []string{"topic_sentence"},
			},
		},
	}
}
