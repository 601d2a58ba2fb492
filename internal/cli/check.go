package cli

import (
	"fmt"

	"sidenote-sync-server/internal/service"

	"github.com/spf13/cobra"
)

func newCheckCmd(global *globalOptions) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a repository identifier without contacting GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := service.ParseRepository(repo)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if global.jsonOutput {
				return writeJSON(out, map[string]string{"owner": owner, "name": name})
			}
			printSuccess(out, "")
			printLabel(out, "owner", owner)
			printLabel(out, " name", name)
			_, _ = fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository as owner/name (required)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
