package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/cuke/internal/config"
	"github.com/chriserin/cuke/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cuke in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	defaults := config.Default()

	// features/ directory
	_, err := os.Stat(defaults.Features)
	featuresExist := err == nil
	if err := os.MkdirAll(defaults.Features, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", defaults.Features, err)
	}
	if featuresExist {
		fmt.Fprintf(w, "%s/ already exists\n", defaults.Features)
	} else {
		fmt.Fprintf(w, "%s/ created\n", defaults.Features)
	}

	// config
	if _, err := os.Stat(config.DefaultPath); err == nil {
		fmt.Fprintf(w, "%s already exists\n", config.DefaultPath)
	} else {
		data, err := config.Marshal(defaults)
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}
		if err := os.WriteFile(config.DefaultPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", config.DefaultPath, err)
		}
		fmt.Fprintf(w, "%s created\n", config.DefaultPath)
	}

	// database
	dbPath := defaults.History.Path
	_, err = os.Stat(dbPath)
	dbExists := err == nil
	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintf(w, "%s already exists\n", dbPath)
	} else {
		fmt.Fprintf(w, "%s created\n", dbPath)
	}

	// gitignore
	msgs, err := ensureGitignore(dbPath)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

// ensureGitignore adds entry to .gitignore unless it is already listed.
func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
