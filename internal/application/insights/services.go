package insights

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/feedbacklab/insight-synthesizer/internal/application"
	"github.com/feedbacklab/insight-synthesizer/internal/domain/ai"
	"github.com/feedbacklab/insight-synthesizer/internal/domain/insights"
	"github.com/feedbacklab/insight-synthesizer/internal/infra/ai/prompt"
)

// MaxTextLen caps each feedback cell before it enters the prompt payload.
const MaxTextLen = 2000

// ColumnSource is the slice of tabular data the payload builder needs.
type ColumnSource interface {
	ColumnIndex(name string) (int, error)
	Cell(row, col int) string
	RowCount() int
}

// Service implements the analysis use-case: build a bounded payload, call the
// model, bind/repair the JSON output, validate citations.
type Service struct {
	Client ai.Client
	Clock  application.Clock
}

// Command for one analysis request
type AnalyzeCommand struct {
	Source  ColumnSource
	Column  string
	MaxRows int
}

// BuildPayload serializes up to maxRows rows of the selected column into
// FeedbackRow records: row_id is the positional index, text is truncated to
// MaxTextLen characters. Any cell value is accepted as-is.
func BuildPayload(src ColumnSource, column string, maxRows int) ([]insights.FeedbackRow, error) {
	col, err := src.ColumnIndex(column)
	if err != nil {
		return nil, err
	}

	n := src.RowCount()
	if maxRows < n {
		n = maxRows
	}
	if n < 0 {
		n = 0
	}

	rows := make([]insights.FeedbackRow, 0, n)
	for i := 0; i < n; i++ {
		text := src.Cell(i, col)
		if utf8.RuneCountInString(text) > MaxTextLen {
			text = string([]rune(text)[:MaxTextLen])
		}
		rows = append(rows, insights.FeedbackRow{RowID: i, Text: text})
	}
	return rows, nil
}

// Analyze runs the full pipeline and returns the bound result together with
// the analyzed payload (the presenter resolves citations against it).
//
// Recovery policy: a JSON syntax failure in the first response triggers
// exactly one repair completion; a second syntax failure, or any schema or
// citation mismatch, is terminal.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*insights.AnalysisResult, []insights.FeedbackRow, error) {
	now := s.Clock.Now()

	rows, err := BuildPayload(cmd.Source, cmd.Column, cmd.MaxRows)
	if err != nil {
		return nil, nil, err
	}

	messages, err := prompt.AnalysisMessages(rows)
	if err != nil {
		return nil, nil, err
	}

	raw, err := s.Client.Complete(ctx, messages)
	if err != nil {
		return nil, nil, err
	}

	repaired := false
	result, err := insights.Bind(raw)
	if err != nil {
		var parseErr *insights.ParseError
		if !errors.As(err, &parseErr) {
			return nil, nil, err
		}
		fixed, rerr := s.Client.Complete(ctx, prompt.RepairMessages(raw))
		if rerr != nil {
			return nil, nil, rerr
		}
		result, err = insights.Bind(fixed)
		if err != nil {
			return nil, nil, err
		}
		repaired = true
	}

	if err := result.ValidateCitations(len(rows)); err != nil {
		return nil, nil, err
	}

	result.ID = insights.AnalysisID(uuid.New().String())
	result.GeneratedAt = now
	result.Repaired = repaired
	return result, rows, nil
}
