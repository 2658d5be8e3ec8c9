package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// MarkdownOptions controls the Markdown report
type MarkdownOptions struct {
	Title       string
	Description string
	// SummaryColumns are summarized below the table; columns missing from
	// the view are skipped.
	SummaryColumns []string
}

// DefaultSummaryColumns are the category columns summarized by default
var DefaultSummaryColumns = []string{"Minimum age", "Max group size"}

// GenerateMarkdown renders the view as a Markdown report: the applied
// selections, one table row per visible record, and a per-column summary.
func GenerateMarkdown(v view.View, opts MarkdownOptions) string {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = "Volunteer Opportunities"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if d := strings.TrimSpace(opts.Description); d != "" {
		sb.WriteString(d + "\n\n")
	}

	fmt.Fprintf(&sb, "Showing **%d** of %d opportunities.\n\n", v.Len(), v.Total)
	writeSelections(&sb, v)

	if v.Len() == 0 {
		sb.WriteString("_No opportunities match the current filters._\n")
	} else {
		writeTable(&sb, v)
	}

	var summaries []view.Summary
	for _, col := range opts.SummaryColumns {
		if v.Columns.IndexOf(col) < 0 {
			continue
		}
		summaries = append(summaries, view.Summarize(v, col))
	}
	if len(summaries) > 0 && v.Len() > 0 {
		sb.WriteString("\n## Summary\n")
		for _, s := range summaries {
			writeSummary(&sb, s)
		}
	}
	return sb.String()
}

func writeSelections(sb *strings.Builder, v view.View) {
	state := v.State
	if state.IsZero() {
		return
	}
	for _, col := range state.Filters.Columns() {
		fmt.Fprintf(sb, "- **%s:** %s\n", col, strings.Join(state.Filters.Values(col), ", "))
	}
	if q := strings.TrimSpace(state.Query); q != "" {
		fmt.Fprintf(sb, "- **Search:** %q\n", q)
	}
	if state.Sort.Active() {
		fmt.Fprintf(sb, "- **Sorted by:** %s (%s)\n", state.Sort.Column, state.Sort.Direction)
	}
	sb.WriteString("\n")
}

func writeTable(sb *strings.Builder, v view.View) {
	sb.WriteString("|")
	for _, c := range v.Columns {
		sb.WriteString(" " + escapeCell(c.Title) + " |")
	}
	sb.WriteString("\n|")
	for range v.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, r := range v.Records {
		sb.WriteString("|")
		for _, c := range v.Columns {
			sb.WriteString(" " + markdownCell(c, r) + " |")
		}
		sb.WriteString("\n")
	}
}

func markdownCell(c model.ColumnSpec, r *model.Record) string {
	text := escapeCell(r.Value(c.Key))
	if c.HasLink() {
		if url := strings.TrimSpace(r.Value(c.LinkKey)); url != "" && text != "" {
			return "[" + text + "](" + url + ")"
		}
	}
	return text
}

// escapeCell keeps a value on one table line
func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeSummary(sb *strings.Builder, s view.Summary) {
	fmt.Fprintf(sb, "\n### %s\n\n", s.Column)
	if s.Numeric > 0 {
		fmt.Fprintf(sb, "Mean %.1f, median %.1f over %d stated values.\n\n", s.Mean, s.Median, s.Numeric)
	}
	for _, b := range s.Buckets {
		fmt.Fprintf(sb, "- %s: %d\n", b.Label, b.Count)
	}
}

// SaveMarkdownToFile writes the report for v to filename
func SaveMarkdownToFile(v view.View, opts MarkdownOptions, filename string) error {
	return os.WriteFile(filename, []byte(GenerateMarkdown(v, opts)), 0644)
}
