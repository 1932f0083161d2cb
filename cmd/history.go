package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/ast"
	"github.com/chriserin/cuke/internal/db"
	"github.com/chriserin/cuke/internal/ui"
)

var limitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunHistory(cmd.OutOrStdout(), cfg.History.Path, limitFlag)
	},
}

func init() {
	historyCmd.Flags().IntVar(&limitFlag, "limit", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

var historyOrder = []ast.Status{
	ast.StatusPassed,
	ast.StatusFailed,
	ast.StatusSkipped,
	ast.StatusUndefined,
	ast.StatusPending,
}

func RunHistory(w io.Writer, path string, limit int) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("run `cuke init` first")
	}

	sqlDB, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	runs, err := db.RecentRuns(sqlDB, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	for _, r := range runs {
		counts, err := db.StatusCounts(sqlDB, r.ID)
		if err != nil {
			return err
		}
		var parts []string
		for _, s := range historyOrder {
			if n := counts[s.String()]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, s))
			}
		}
		if len(parts) == 0 {
			parts = append(parts, "no steps")
		}

		outcome := "running"
		if r.Success != nil {
			outcome = "failed"
			if *r.Success {
				outcome = "passed"
			}
		}
		ui.HistoryRow(w, shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"), outcome, strings.Join(parts, ", "))
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
