package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Apply and preview unified diffs against a workpad",
}

var patchApplyMessage string

var patchApplyCmd = &cobra.Command{
	Use:   "apply <pad-id> [diff-file]",
	Short: "Apply a unified diff to a workpad as a new checkpoint",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		diffText, err := readDiffArg(cmd, args)
		if err != nil {
			return err
		}

		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		hash, err := e.ApplyPatch(context.Background(), args[0], diffText, patchApplyMessage)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var patchPreviewCmd = &cobra.Command{
	Use:   "preview <pad-id> [diff-file]",
	Short: "Preview whether a diff applies cleanly, its size, and a recommendation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		diffText, err := readDiffArg(cmd, args)
		if err != nil {
			return err
		}

		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		preview, err := e.PreviewPatch(context.Background(), args[0], diffText)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "can_apply=%v files=%d additions=%d deletions=%d recommendation=%s\n",
			preview.CanApply, preview.Stats.FilesAffected, preview.Stats.Additions, preview.Stats.Deletions, preview.Recommendation)
		return nil
	},
}

// readDiffArg reads the diff text from args[1] if given, else from stdin.
func readDiffArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", fmt.Errorf("reading diff file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading diff from stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	patchApplyCmd.Flags().StringVarP(&patchApplyMessage, "message", "m", "", "checkpoint commit message")
	patchCmd.AddCommand(patchApplyCmd)
	patchCmd.AddCommand(patchPreviewCmd)
}
