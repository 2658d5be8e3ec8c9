package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/export"
	"github.com/vanderheijden86/voltable/pkg/view"
)

// listCellWidth caps printed cells; long descriptions are cut with an ellipsis.
const listCellWidth = 40

var flagJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered and sorted table",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagJSON, "json", false, "print the view as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	v, err := currentView(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		if err := export.WriteJSON(out, v); err != nil {
			return sysErr(err)
		}
		return nil
	}
	fmt.Fprintln(out, renderList(v))
	return nil
}

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	listCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderList draws the view as a bordered table followed by a count line
func renderList(v view.View) string {
	headers := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		headers[i] = c.Title
	}
	rows := make([][]string, 0, v.Len())
	for _, r := range v.Records {
		row := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			row[i] = listCell(r.Value(c.Key))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	if v.Len() == 0 && v.Total > 0 {
		b.WriteString("No opportunities match the current filters.\n")
	}
	fmt.Fprintf(&b, "%d of %d opportunities", v.Len(), v.Total)
	return b.String()
}

// listCell flattens whitespace and truncates to listCellWidth
func listCell(s string) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), listCellWidth, "…")
}
