package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/feedbacklab/insight-synthesizer/internal/domain/ai"
	"github.com/feedbacklab/insight-synthesizer/internal/domain/insights"
)

// GetSystemPrompt establishes the analyst persona and the citation requirement.
func GetSystemPrompt() string {
	return "You are a product leader. Your job is to synthesize customer feedback into actionable product insights. " +
		"Be specific and avoid generic advice. Every theme must include citations to row_id values."
}

// GetSchemaPrompt declares the exact required output schema. It is sent as the
// final message of the analysis request; models follow format constraints more
// reliably when the schema is the last instruction seen.
func GetSchemaPrompt() string {
	return "Return ONLY valid JSON. No markdown, no commentary. " +
		`Schema: {"themes": [{"theme": "", "summary": "", ` +
		`"frequency": "Low|Medium|High", "severity": "Low|Medium|High", ` +
		`"recommended_action": "", "cited_row_ids": [0]}]}. ` +
		"cited_row_ids must be real row_id integers from the input."
}

// task is the JSON-encoded body of the user message.
type task struct {
	Task     string                 `json:"task"`
	Feedback []insights.FeedbackRow `json:"feedback"`
}

const taskInstruction = "Cluster the feedback into 3-7 themes. For each theme: name, summary, frequency, severity, recommended_action, cited_row_ids."

// AnalysisMessages builds the three-message analysis request: system persona,
// user task with the row payload, user schema constraint.
func AnalysisMessages(rows []insights.FeedbackRow) ([]ai.Message, error) {
	body, err := json.Marshal(task{Task: taskInstruction, Feedback: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return []ai.Message{
		{Role: ai.RoleSystem, Content: GetSystemPrompt()},
		{Role: ai.RoleUser, Content: string(body)},
		{Role: ai.RoleUser, Content: GetSchemaPrompt()},
	}, nil
}

// RepairMessages builds the two-message repair request that asks the model to
// reformat its own malformed prior output.
func RepairMessages(raw string) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: "Fix JSON."},
		{Role: ai.RoleUser, Content: "Repair this into valid JSON only:\n" + raw},
	}
}
