package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/parser"
)

var sexpCmd = &cobra.Command{
	Use:   "sexp <file>",
	Short: "Print the s-expression of a feature file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSexp(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(sexpCmd)
}

func RunSexp(w io.Writer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	feature, parseErrors := parser.Parse(path, content)
	for _, pe := range parseErrors {
		slog.Warn("parse error", "file", path, "line", pe.Line, "error", pe.Message)
	}

	fmt.Fprintln(w, feature.Sexp().String())
	return nil
}
