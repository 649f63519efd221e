package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssdajoker/sologit/internal/testorch"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a workpad's configured test batch and analyze the results",
}

var testRunCmd = &cobra.Command{
	Use:   "run <pad-id>",
	Short: "Run the configured test batch against a workpad, without promoting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		batch, report, err := e.RunTests(context.Background(), args[0], cfg.Sologit.Tests)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "status=%s all_passed=%v\n", report.Status, batch.AllPassed)
		fmt.Fprintln(cmd.OutOrStdout(), report.FormattedReport)
		if !batch.AllPassed {
			return fmt.Errorf("%d of %d tests did not pass", len(batch.Results)-batch.Totals[testorch.StatusPassed], len(batch.Results))
		}
		return nil
	},
}

func init() {
	testCmd.AddCommand(testRunCmd)
}
