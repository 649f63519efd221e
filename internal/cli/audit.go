package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the workpad/pipeline audit trail",
}

var auditEventsCmd = &cobra.Command{
	Use:   "events <pad-id>",
	Short: "Show recorded lifecycle events for a workpad",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.AuditEvents(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var auditPipelineCmd = &cobra.Command{
	Use:   "pipeline <pad-id>",
	Short: "Show recorded auto-merge pipeline stage history for a workpad",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		history, err := e.AuditPipelineHistory(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditEventsCmd)
	auditCmd.AddCommand(auditPipelineCmd)
}
