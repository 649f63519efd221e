// Package cli implements sologit's command-line surface: a thin wrapper
// over internal/engine, mirroring lucasnoah-taintfactory's internal/cli
// (a cobra root command with one file per command group). Flag parsing
// and help text are the ambient CLI entrypoint every repo in the corpus
// has; they are not themselves specified by spec.md §1.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssdajoker/sologit/internal/config"
	"github.com/ssdajoker/sologit/internal/engine"
)

var version = "dev"

// SetVersion overrides the version reported by `sologit version`, set at
// build time via ldflags.
func SetVersion(v string) {
	version = v
}

var stateRootFlag string

var rootCmd = &cobra.Command{
	Use:   "sologit",
	Short: "sologit — a solo-developer workpad/promotion workflow engine",
	Long: `sologit replaces long-lived feature branches with ephemeral workpads,
promoted to a linear trunk only once automated tests pass.

State is stored under --state-root (default ~/.sologit, or
$SOLOGIT_STATE_ROOT if set): JSON for repository/workpad metadata, SQLite
for the audit trail.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateRootFlag, "state-root", "", "override the state root directory")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(workpadCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(auditCmd)
}

// loadConfig resolves the effective Config: LoadDefault's search path, with
// --state-root (or $SOLOGIT_STATE_ROOT) overriding the resolved state root.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if stateRootFlag != "" {
		cfg.Sologit.StateRoot = stateRootFlag
	} else if env := os.Getenv("SOLOGIT_STATE_ROOT"); env != "" {
		cfg.Sologit.StateRoot = env
	}
	return *cfg, nil
}

// openEngine loads config and opens an Engine against it. Callers must
// Close it when done.
func openEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return engine.Open(cfg, slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}
