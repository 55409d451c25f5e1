package insights

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportFileName is the suggested download name for exported reports.
const ReportFileName = "insights_report.md"

// Markdown renders the analysis as a downloadable report: one section per
// theme with a fixed bullet list.
func (r *AnalysisResult) Markdown() string {
	lines := []string{"# AI Insight Synthesizer Output\n"}
	for _, t := range r.Themes {
		ids := make([]string, len(t.CitedRowIDs))
		for i, id := range t.CitedRowIDs {
			ids[i] = strconv.Itoa(id)
		}
		lines = append(lines,
			fmt.Sprintf("## %s", t.Theme),
			fmt.Sprintf("- Summary: %s", t.Summary),
			fmt.Sprintf("- Frequency: %s", t.Frequency),
			fmt.Sprintf("- Severity: %s", t.Severity),
			fmt.Sprintf("- Recommended action: %s", t.RecommendedAction),
			fmt.Sprintf("- Cited rows: %s\n", strings.Join(ids, ", ")),
		)
	}
	return strings.Join(lines, "\n")
}
