package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Import and inspect repositories",
}

var repoCloneCmd = &cobra.Command{
	Use:   "clone <url> <name>",
	Short: "Clone a remote repository; its default branch becomes trunk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.ImportURL(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var repoImportArchiveCmd = &cobra.Command{
	Use:   "import-archive <path> <name>",
	Short: "Import a repository from a local zip or tar.gz archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.ImportArchive(context.Background(), data, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()

		repos := e.Store().ListRepos()
		data, err := json.MarshalIndent(repos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	repoCmd.AddCommand(repoCloneCmd)
	repoCmd.AddCommand(repoImportArchiveCmd)
	repoCmd.AddCommand(repoListCmd)
}
