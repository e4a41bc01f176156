// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package agent

// Exported for white-box assertions in agent_test.
const (
	ToolSearchRelatedStory = toolSearchRelatedStory
	ChatMaxTokensShort     = chatMaxTokensShort
	ChatMaxTokensLong      = chatMaxTokensLong
	ChatPromptCutoff       = chatPromptCutoff
	MaxToolIterations      = maxToolIterations
)
