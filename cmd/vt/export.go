package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/export"
	"github.com/vanderheijden86/voltable/pkg/view"
)

var (
	flagFormat      string
	flagOutput      string
	flagChartColumn string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered and sorted table to a file",
	Long: `Write the current view in one of these formats:

  md      Markdown table with a summary of age and group size
  json    records and the selections that produced them
  csv     visible columns and rows
  sqlite  database with an "opportunities" table (requires --output)
  svg     bar chart of --column
  png     bar chart of --column`,
	Example: `  vt export --format md -o opportunities.md
  vt export --filter "Minimum age=under12" --format csv
  vt export --format png --column "Max group size" -o groups.png`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "md", "md, json, csv, sqlite, svg or png")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&flagChartColumn, "column", "Minimum age", "column charted by svg and png")
}

func runExport(cmd *cobra.Command, args []string) error {
	v, err := currentView(cmd.Context())
	if err != nil {
		return err
	}
	return writeExport(cmd.Context(), cmd.OutOrStdout(), v, exportRequest{
		format: flagFormat,
		output: flagOutput,
		column: flagChartColumn,
	})
}

type exportRequest struct {
	format string
	output string // empty writes to stdout
	column string // charted column for svg and png
}

func writeExport(ctx context.Context, stdout io.Writer, v view.View, req exportRequest) error {
	format := strings.ToLower(strings.TrimSpace(req.format))
	mdOpts := export.MarkdownOptions{
		Title:          cfg.Title,
		Description:    cfg.Description,
		SummaryColumns: export.DefaultSummaryColumns,
	}

	var write func(io.Writer) error
	switch format {
	case "md", "markdown":
		if req.output != "" {
			return finishExport(format, req.output, v, export.SaveMarkdownToFile(v, mdOpts, req.output))
		}
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, export.GenerateMarkdown(v, mdOpts))
			return err
		}
	case "json":
		write = func(w io.Writer) error { return export.WriteJSON(w, v) }
	case "csv":
		write = func(w io.Writer) error { return export.WriteCSV(w, v) }
	case "sqlite":
		if req.output == "" {
			return userErr(errors.New("--output is required for the sqlite format"))
		}
		return finishExport(format, req.output, v, export.WriteSQLite(ctx, req.output, v))
	case "svg", "png":
		c, ok := v.Columns.Find(req.column)
		if !ok {
			return userErr(fmt.Errorf("unknown chart column %q", req.column))
		}
		summary := view.Summarize(v, c.Key)
		if format == "svg" {
			write = func(w io.Writer) error { return export.WriteSVG(w, summary) }
		} else {
			write = func(w io.Writer) error { return export.WritePNG(w, summary) }
		}
	default:
		return userErr(fmt.Errorf("unknown format %q (expected md, json, csv, sqlite, svg or png)", req.format))
	}

	if req.output == "" {
		if err := write(stdout); err != nil {
			return sysErr(fmt.Errorf("export %s: %w", format, err))
		}
		return nil
	}

	f, err := os.Create(req.output)
	if err != nil {
		return sysErr(err)
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return finishExport(format, req.output, v, err)
}

func finishExport(format, path string, v view.View, err error) error {
	if err != nil {
		return sysErr(fmt.Errorf("export %s: %w", format, err))
	}
	logger.Info("exported", "format", format, "file", path, "records", v.Len())
	return nil
}
