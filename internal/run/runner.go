package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chriserin/cuke/internal/ast"
	"github.com/chriserin/cuke/internal/parser"
	"github.com/chriserin/cuke/internal/ui"
)

// Runner parses feature files and walks them with a formatter, one file at
// a time.
type Runner struct {
	Glob      string
	Tags      *TagFilter
	Formatter ui.Formatter
	Features  *Features
	Out       io.Writer
}

// Run executes the features named by args and prints the summary. The
// context is checked between features.
func (r *Runner) Run(ctx context.Context, args []string) (Summary, error) {
	start := time.Now()

	targets, err := Resolve(args, r.Glob)
	if err != nil {
		return Summary{}, err
	}
	slog.Debug("resolved feature files", "count", len(targets))

	err = r.walk(ctx, targets)
	r.Formatter.Finish()
	if err != nil {
		return r.Features.Summary(), err
	}

	summary := r.Features.Summary()
	r.printSummary(summary, time.Since(start))
	slog.Info("run finished",
		"features", len(targets),
		"failed_steps", summary.Steps[ast.StatusFailed],
		"parse_errors", summary.ParseErrors,
	)
	return summary, nil
}

// walk runs each target in order. It stops at the first unreadable file,
// tag expression error or cancellation.
func (r *Runner) walk(ctx context.Context, targets []Target) error {
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := os.ReadFile(t.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", t.Path, err)
		}

		feature, parseErrors := parser.Parse(t.Path, content)
		for _, pe := range parseErrors {
			slog.Warn("parse error", "file", t.Path, "line", pe.Line, "error", pe.Message)
		}
		r.Features.ParseErrors(len(parseErrors))

		lines := t.Filter()
		if r.Tags != nil {
			lines, err = r.Tags.Select(feature, lines)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				slog.Debug("no scenarios match tags", "file", t.Path, "tags", r.Tags)
				continue
			}
		}
		feature.SetLines(lines)
		r.Features.Add(feature)
		slog.Debug("running feature", "file", t.Path, "lines", t.Lines)
		feature.Accept(r.Formatter)
	}
	return nil
}

func (r *Runner) printSummary(s Summary, elapsed time.Duration) {
	fmt.Fprintln(r.Out)
	if s.ParseErrors > 0 {
		fmt.Fprintf(r.Out, "%d parse errors\n", s.ParseErrors)
	}
	ui.CountLine(r.Out, "scenario", s.Scenarios)
	ui.CountLine(r.Out, "step", s.Steps)
	ui.Duration(r.Out, elapsed)
	ui.Snippets(r.Out, s.Snippets)
}
