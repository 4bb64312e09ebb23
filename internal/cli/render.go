package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// Confidence bands used for coloring.
const (
	highConfidence   = 0.8
	mediumConfidence = 0.5
)

// ConfidenceStyle picks a color for a confidence value.
func ConfidenceStyle(confidence float64) lipgloss.Style {
	switch {
	case confidence >= highConfidence:
		return SuccessStyle
	case confidence >= mediumConfidence:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// Percent formats a ratio as a whole percentage.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// DescribeObservation is a one-line summary of an observation.
func DescribeObservation(obs model.Observation) string {
	var parts []string
	if !obs.Date.IsZero() {
		parts = append(parts, obs.Date.Format(dateLayout))
	}
	if obs.Merchant != "" {
		parts = append(parts, BoldStyle.Render(obs.Merchant))
	}
	if obs.Description != "" && obs.Description != obs.Merchant {
		parts = append(parts, obs.Description)
	}
	parts = append(parts, "$"+obs.Amount.StringFixed(2))
	return strings.Join(parts, "  ")
}

// RenderPrediction shows the observation, the predicted category with its
// confidence and the reasoning behind it.
func RenderPrediction(obs model.Observation, pred model.CategoryPrediction) string {
	var b strings.Builder
	b.WriteString(DescribeObservation(obs))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n",
		BoldStyle.Render(string(pred.Category)),
		ConfidenceStyle(pred.Confidence).Render(Percent(pred.Confidence)))
	for _, reason := range pred.Reasoning {
		b.WriteString(SubtleStyle.Render("    • "+reason) + "\n")
	}
	if len(pred.SuggestedTags) > 0 {
		b.WriteString(SubtleStyle.Render("    tags: "+strings.Join(pred.SuggestedTags, ", ")) + "\n")
	}
	return b.String()
}

// RenderSignals lists individual signals, strongest first.
func RenderSignals(preds []model.CategoryPrediction) string {
	if len(preds) == 0 {
		return SubtleStyle.Render("no signals") + "\n"
	}

	sorted := make([]model.CategoryPrediction, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	rows := make([][]string, len(sorted))
	for i, p := range sorted {
		rows[i] = []string{
			string(p.Category),
			ConfidenceStyle(p.Confidence).Render(Percent(p.Confidence)),
			strings.Join(p.Reasoning, "; "),
		}
	}
	return RenderTable([]string{"Category", "Confidence", "Reasoning"}, rows)
}

// RenderRules lists rules in evaluation order.
func RenderRules(rules []model.Rule) string {
	if len(rules) == 0 {
		return SubtleStyle.Render("no rules") + "\n"
	}

	rows := make([][]string, len(rules))
	for i, r := range rules {
		status := SuccessStyle.Render("active")
		if !r.IsActive {
			status = SubtleStyle.Render("disabled")
		}
		origin := "learned"
		if r.IsUserCreated {
			origin = "user"
		}
		rows[i] = []string{
			r.ID,
			r.Name,
			r.Condition.String(),
			string(r.Action.Category),
			fmt.Sprintf("%d", r.Priority),
			fmt.Sprintf("%d", r.UsageCount),
			ConfidenceStyle(r.Accuracy).Render(Percent(r.Accuracy)),
			origin,
			status,
		}
	}
	return FormatTitle(RuleIcon, fmt.Sprintf("Rules (%d)", len(rules))) + "\n" +
		RenderTable([]string{"ID", "Name", "Condition", "Category", "Priority", "Used", "Accuracy", "Origin", "Status"}, rows)
}

// RenderPatterns lists learned patterns.
func RenderPatterns(patterns []model.Pattern) string {
	if len(patterns) == 0 {
		return SubtleStyle.Render("no learned patterns") + "\n"
	}

	rows := make([][]string, len(patterns))
	for i, p := range patterns {
		describe := ""
		if p.Payload != nil {
			describe = p.Payload.Describe()
		}
		rows[i] = []string{
			p.ID,
			string(p.Kind()),
			describe,
			string(p.Category),
			fmt.Sprintf("%d", p.Occurrences),
			Percent(p.Confidence),
			ConfidenceStyle(p.Accuracy).Render(Percent(p.Accuracy)),
			p.LastSeen.Format(dateLayout),
		}
	}
	return FormatTitle(SaffronIcon, fmt.Sprintf("Learned patterns (%d)", len(patterns))) + "\n" +
		RenderTable([]string{"ID", "Kind", "Matches", "Category", "Seen", "Confidence", "Accuracy", "Last seen"}, rows)
}

// RenderCorrections lists corrections, newest first.
func RenderCorrections(corrections []model.Correction) string {
	if len(corrections) == 0 {
		return SubtleStyle.Render("no corrections recorded") + "\n"
	}

	rows := make([][]string, 0, len(corrections))
	for i := len(corrections) - 1; i >= 0; i-- {
		c := corrections[i]
		outcome := ErrorStyle.Render(ErrorIcon)
		if c.WasCorrect() {
			outcome = SuccessStyle.Render(SuccessIcon)
		}
		rows = append(rows, []string{
			c.Timestamp.Format(time.DateTime),
			c.Observation.Merchant,
			fmt.Sprintf("%s (%s)", c.OriginalCategory, Percent(c.OriginalConfidence)),
			string(c.CorrectedCategory),
			outcome,
			c.Reason,
		})
	}
	return RenderTable([]string{"When", "Merchant", "Predicted", "Corrected", "", "Reason"}, rows)
}

// RenderMetrics summarizes overall and per-category accuracy.
func RenderMetrics(m model.Metrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Model version:  %s\n", m.ModelVersion)
	trained := "never"
	if m.LastTraining != nil {
		trained = m.LastTraining.Format(time.DateTime)
	}
	fmt.Fprintf(&b, "Last training:  %s\n", trained)
	fmt.Fprintf(&b, "Reviewed:       %d\n", m.TotalPredictions)
	fmt.Fprintf(&b, "Correct:        %d\n", m.CorrectPredictions)
	fmt.Fprintf(&b, "Accuracy:       %s\n", ConfidenceStyle(m.Accuracy).Render(Percent(m.Accuracy)))

	if len(m.ByCategory) == 0 {
		return RenderBox(ChartIcon, "Metrics", strings.TrimRight(b.String(), "\n"))
	}

	cats := make([]model.Category, 0, len(m.ByCategory))
	for cat := range m.ByCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	rows := make([][]string, len(cats))
	for i, cat := range cats {
		s := m.ByCategory[cat]
		rows[i] = []string{
			string(cat),
			fmt.Sprintf("%d/%d", s.Correct, s.Total),
			ConfidenceStyle(s.Accuracy).Render(Percent(s.Accuracy)),
		}
	}
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"Category", "Correct", "Accuracy"}, rows))

	return RenderBox(ChartIcon, "Metrics", strings.TrimRight(b.String(), "\n"))
}

// RenderTable lays out rows under a styled header, sizing each column to
// its widest cell.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		cells := []string{TableHeaderStyle.Width(widths[i] + 2).Render(h)}
		for _, row := range rows {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells = append(cells, TableCellStyle.Width(widths[i]+2).Render(cell))
		}
		columns[i] = lipgloss.JoinVertical(lipgloss.Left, cells...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...) + "\n"
}
