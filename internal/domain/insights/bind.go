package insights

import (
	"encoding/json"
	"fmt"
	"strings"
)

const snippetLimit = 200

// Bind decodes raw model output into an AnalysisResult.
//
// Failures split into two classes: a *ParseError when the text is not JSON at
// all (eligible for one repair call), and a *ValidationError when the JSON
// parses but does not match the theme schema (terminal). Extra fields from
// the model are ignored.
func Bind(raw string) (*AnalysisResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Snippet: ""}
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, &ParseError{Snippet: snippet(trimmed)}
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		// Syntax already checked; any decode error here is a schema
		// mismatch (wrong type, bad enum value).
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	if problems := validateResult(&result); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return &result, nil
}

func validateResult(r *AnalysisResult) []string {
	var problems []string
	if r.Themes == nil {
		return []string{"themes is required and must be an array"}
	}
	if len(r.Themes) == 0 {
		return []string{"themes must not be empty"}
	}
	for i, t := range r.Themes {
		prefix := fmt.Sprintf("themes[%d]", i)
		if t.Theme == "" {
			problems = append(problems, prefix+".theme is required")
		}
		if t.Summary == "" {
			problems = append(problems, prefix+".summary is required")
		}
		if t.Frequency == "" {
			problems = append(problems, prefix+".frequency is required")
		}
		if t.Severity == "" {
			problems = append(problems, prefix+".severity is required")
		}
		if t.RecommendedAction == "" {
			problems = append(problems, prefix+".recommended_action is required")
		}
		if len(t.CitedRowIDs) == 0 {
			problems = append(problems, prefix+".cited_row_ids must be a non-empty array of integers")
		}
	}
	return problems
}

func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit]
}
