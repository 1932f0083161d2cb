package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/ast"
	"github.com/chriserin/cuke/internal/config"
	"github.com/chriserin/cuke/internal/db"
	"github.com/chriserin/cuke/internal/run"
	"github.com/chriserin/cuke/internal/stepdef"
	"github.com/chriserin/cuke/internal/ui"
)

// ErrRunFailed is returned when a run had failing steps or parse errors.
var ErrRunFailed = errors.New("run failed")

var (
	formatFlag    string
	strictFlag    bool
	tagsFlag      string
	noHistoryFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run [path[:line...]...]",
	Short: "Run features",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if cmd.Flags().Changed("format") {
			c.Format = formatFlag
		}
		if cmd.Flags().Changed("strict") {
			c.Strict = strictFlag
		}
		if cmd.Flags().Changed("tags") {
			c.Tags = tagsFlag
		}
		if noHistoryFlag {
			c.History.Enabled = false
		}
		return RunRun(cmd.Context(), cmd.OutOrStdout(), c, registry, args)
	},
}

func init() {
	runCmd.Flags().StringVar(&formatFlag, "format", "pretty", "Output format: pretty or progress")
	runCmd.Flags().BoolVar(&strictFlag, "strict", false, "Fail on undefined and pending steps")
	runCmd.Flags().StringVar(&tagsFlag, "tags", "", `Only run scenarios matching a tag expression, e.g. "@wip and not @slow"`)
	runCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record the run")
	rootCmd.AddCommand(runCmd)
}

func RunRun(ctx context.Context, w io.Writer, c config.Config, r *stepdef.Registry, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 0 {
		args = []string{c.Features}
	}

	formatter, err := ui.New(c.Format, w, r, func() ast.World { return stepdef.NewWorld() })
	if err != nil {
		return err
	}
	tags, err := run.NewTagFilter(c.Tags)
	if err != nil {
		return err
	}

	features := run.NewFeatures(nil)
	var runLog *db.RunLog
	if c.History.Enabled {
		sqlDB, started, err := beginHistory(c.History.Path)
		if err != nil {
			return err
		}
		if sqlDB != nil {
			defer sqlDB.Close()
			runLog = started
			features = run.NewFeatures(runLog)
		}
	}

	runner := &run.Runner{Glob: c.Glob, Tags: tags, Formatter: formatter, Features: features, Out: w}
	summary, runErr := runner.Run(ctx, args)

	// An aborted run is recorded as failed.
	success := runErr == nil && summary.Success(c.Strict)
	if runLog != nil {
		if err := runLog.Finish(success); err != nil {
			slog.Warn("finishing run history", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if !success {
		return ErrRunFailed
	}
	return nil
}

// beginHistory opens the history database and starts a run. It returns a
// nil database when history cannot be kept, which only warns.
func beginHistory(path string) (*sql.DB, *db.RunLog, error) {
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		slog.Warn("history disabled, run `cuke init` first", "path", path)
		return nil, nil, nil
	}
	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	runLog, err := db.BeginRun(sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return sqlDB, runLog, nil
}
