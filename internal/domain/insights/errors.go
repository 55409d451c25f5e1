package insights

import (
	"fmt"
	"strings"
)

// ParseError means the raw model output is not valid JSON. This is the only
// error class the repair call may recover from.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
	}
	return "model output is not valid JSON"
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the decoded JSON does not match the required theme
// schema. It is terminal; no repair is attempted.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "model output does not match schema: " + strings.Join(e.Problems, "; ")
}

// CitationError means a theme cited a row id outside the analyzed subset.
type CitationError struct {
	Theme    string
	RowIDs   []int
	RowCount int
}

func (e *CitationError) Error() string {
	ids := make([]string, len(e.RowIDs))
	for i, id := range e.RowIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("theme %q cites row ids outside the analyzed range [0,%d): %s",
		e.Theme, e.RowCount, strings.Join(ids, ", "))
}
