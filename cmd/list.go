package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/config"
	"github.com/chriserin/cuke/internal/parser"
	"github.com/chriserin/cuke/internal/run"
	"github.com/chriserin/cuke/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list [path...]",
	Short: "List scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunList(cmd.OutOrStdout(), cfg, args)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type listRow struct {
	location string
	keyword  string
	name     string
}

type keyworded interface {
	Keyword() string
}

func RunList(w io.Writer, c config.Config, args []string) error {
	if len(args) == 0 {
		args = []string{c.Features}
	}
	targets, err := run.Resolve(args, c.Glob)
	if err != nil {
		return err
	}

	var results []listRow
	for _, t := range targets {
		content, err := os.ReadFile(t.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", t.Path, err)
		}
		feature, parseErrors := parser.Parse(t.Path, content)
		for _, pe := range parseErrors {
			slog.Warn("parse error", "file", t.Path, "line", pe.Line, "error", pe.Message)
		}

		filter := t.Filter()
		for _, e := range feature.Elements() {
			if len(filter) > 0 && !e.AtAnyLine(filter) {
				continue
			}
			r := listRow{location: feature.FileLine(e.Line()), name: e.Name()}
			if k, ok := e.(keyworded); ok {
				r.keyword = k.Keyword()
			}
			results = append(results, r)
		}
	}

	width := 0
	for _, r := range results {
		if len(r.location) > width {
			width = len(r.location)
		}
	}
	for _, r := range results {
		ui.ListRow(w, r.location, r.keyword, r.name, width)
	}

	return nil
}
