package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/config"
	"github.com/chriserin/cuke/internal/logging"
	"github.com/chriserin/cuke/internal/stepdef"
)

var (
	configPath string
	cfg        = config.Default()
	registry   = stepdef.New()
)

var rootCmd = &cobra.Command{
	Use:          "cuke",
	Short:        "cuke: run Gherkin features against Go step definitions",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the config file")
}

func setup(cmd *cobra.Command) error {
	if _, err := config.LoadEnv(".env"); err != nil {
		return err
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return logging.Initialize(cmd.ErrOrStderr(), cfg.Logging.Type, cfg.Logging.Level)
}

// Execute runs the CLI without step definitions; every step is reported
// undefined along with a snippet.
func Execute() {
	ExecuteWith(stepdef.New())
}

// ExecuteWith runs the CLI with the step definitions of r.
func ExecuteWith(r *stepdef.Registry) {
	registry = r
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
