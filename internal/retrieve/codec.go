// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package retrieve

import (
	"regexp"
	"strings"

	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// Result is the decoded form of one encoded match, the externally-visible
// shape after round-tripping through the text block.
type Result struct {
	ID      string `json:"id"`
	Owner   string `json:"user"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Field tags of the encoded block. A chunk missing any of them is treated
// as noise from the agent's free-form composition, not an error.
var requiredMarkers = []string{"**id**", "**User**", "**title**", "**content**"}

var (
	idRe    = regexp.MustCompile(`\*\*id\*\*:[ \t]*(.+)`)
	userRe  = regexp.MustCompile(`\*\*User\*\*:[ \t]*(.+)`)
	titleRe = regexp.MustCompile(`\*\*title\*\*:[ \t]*(.+)`)
	// Content is greedy to end of chunk, including embedded newlines.
	contentRe = regexp.MustCompile(`(?s)\*\*content\*\*:[ \t]*(.+)`)
)

// Decode parses an encoded block back into typed results. The input may
// have passed through a language model, so it is normalized first: literal
// \n sequences become real line breaks and double quotes are stripped
// (content containing those characters decodes lossily).
// Chunks missing a tag marker are skipped silently; a chunk that has all
// four markers but an unextractable value fails with a malformed-result
// error so the caller can distrust the whole response.
func Decode(block string) ([]Result, error) {
	normalized := strings.ReplaceAll(block, `\n`, "\n")
	normalized = strings.ReplaceAll(normalized, `"`, "")

	var results []Result
	for _, chunk := range strings.Split(normalized, "\n\n\n") {
		if !hasAllMarkers(chunk) {
			continue
		}

		res := Result{}
		for _, f := range []struct {
			re   *regexp.Regexp
			tag  string
			dest *string
		}{
			{idRe, "id", &res.ID},
			{userRe, "User", &res.Owner},
			{titleRe, "title", &res.Title},
			{contentRe, "content", &res.Content},
		} {
			m := f.re.FindStringSubmatch(chunk)
			if m == nil {
				return nil, drifterr.Errorf(drifterr.CodeRetrieveDecodeMalformed,
					"tag %s present without a capturable value", f.tag)
			}
			*f.dest = strings.TrimSpace(m[1])
		}

		results = append(results, res)
	}

	return results, nil
}

func hasAllMarkers(chunk string) bool {
	for _, marker := range requiredMarkers {
		if !strings.Contains(chunk, marker) {
			return false
		}
	}
	return true
}
