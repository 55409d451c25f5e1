package insights

import (
	"encoding/json"
	"fmt"
	"time"
)

// AnalysisID identifier type
type AnalysisID string

// Level is the closed frequency/severity scale. The model is instructed to
// answer with exactly one of these values; anything else is rejected at
// decode time.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// UnmarshalJSON rejects values outside the declared scale.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level must be a string: %w", err)
	}
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh:
		*l = Level(s)
		return nil
	default:
		return fmt.Errorf("level must be one of Low|Medium|High, got %q", s)
	}
}

// FeedbackRow is one analyzed record: positional row id plus the (truncated)
// feedback text. Rows live only for the duration of a single analysis.
type FeedbackRow struct {
	RowID int    `json:"row_id"`
	Text  string `json:"text"`
}

// Theme is a synthesized cluster of feedback rows sharing a common issue.
type Theme struct {
	Theme             string `json:"theme"`
	Summary           string `json:"summary"`
	Frequency         Level  `json:"frequency"`
	Severity          Level  `json:"severity"`
	RecommendedAction string `json:"recommended_action"`
	CitedRowIDs       []int  `json:"cited_row_ids"`
}

// Citation resolves one cited row id back to its source text.
type Citation struct {
	RowID int    `json:"row_id"`
	Text  string `json:"text"`
}

// AnalysisResult is the full model output for one request.
type AnalysisResult struct {
	ID          AnalysisID `json:"id,omitempty"`
	GeneratedAt time.Time  `json:"generated_at,omitempty"`
	Repaired    bool       `json:"repaired"`
	Themes      []Theme    `json:"themes"`
}

// Citations looks up a theme's cited rows in the analyzed payload. Callers
// must run ValidateCitations first; an out-of-range id here is a bug.
func (t *Theme) Citations(rows []FeedbackRow) ([]Citation, error) {
	cited := make([]Citation, 0, len(t.CitedRowIDs))
	for _, id := range t.CitedRowIDs {
		if id < 0 || id >= len(rows) {
			return nil, &CitationError{Theme: t.Theme, RowIDs: []int{id}}
		}
		cited = append(cited, Citation{RowID: rows[id].RowID, Text: rows[id].Text})
	}
	return cited, nil
}

// ValidateCitations checks every cited row id against the analyzed subset,
// [0, rowCount). It runs immediately after binding so a hallucinated id
// fails the analysis instead of a later rendering lookup.
func (r *AnalysisResult) ValidateCitations(rowCount int) error {
	for i := range r.Themes {
		t := &r.Themes[i]
		var bad []int
		for _, id := range t.CitedRowIDs {
			if id < 0 || id >= rowCount {
				bad = append(bad, id)
			}
		}
		if len(bad) > 0 {
			return &CitationError{Theme: t.Theme, RowIDs: bad, RowCount: rowCount}
		}
	}
	return nil
}
