package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssdajoker/sologit/internal/store"
)

var workpadCmd = &cobra.Command{
	Use:   "workpad",
	Short: "Create and inspect workpads",
}

var workpadCreateCmd = &cobra.Command{
	Use:   "create <repo-id> <title>",
	Short: "Create a new workpad branch off trunk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.CreateWorkpad(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var workpadListRepoID string

var workpadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workpads",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		pads := e.Store().ListWorkpads(store.ListFilter{RepoID: workpadListRepoID})
		data, err := json.MarshalIndent(pads, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var workpadShowCmd = &cobra.Command{
	Use:   "show <pad-id>",
	Short: "Show a single workpad's full record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		w, err := e.Store().GetWorkpad(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	workpadListCmd.Flags().StringVar(&workpadListRepoID, "repo", "", "filter by repository id")
	workpadCmd.AddCommand(workpadCreateCmd)
	workpadCmd.AddCommand(workpadListCmd)
	workpadCmd.AddCommand(workpadShowCmd)
}
