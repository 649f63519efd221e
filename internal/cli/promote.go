package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssdajoker/sologit/internal/gate"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <pad-id>",
	Short: "Run the full run_tests -> gate -> promote -> smoke -> rollback pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Promote(context.Background(), args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

		if result.Decision != nil && result.Decision.Verdict != gate.VerdictApprove {
			return fmt.Errorf("promotion gate verdict: %s", result.Decision.Verdict)
		}
		return nil
	},
}
