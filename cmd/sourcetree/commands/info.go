package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info subcommand.
func NewInfoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "info [path]",
		Short:         "Show repository summary",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := historyEnv(cmd, args)
			if err != nil {
				return err
			}
			defer repo.Free()

			info, err := repo.Info(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:    %s\n", info.Path)
			fmt.Fprintf(out, "branch:  %s\n", info.CurrentBranch)
			fmt.Fprintf(out, "tip:     %s  %s\n", shortHash(info.Tip.ID), firstLine(info.Tip.Message))

			fmt.Fprintln(out, "branches:")

			for _, branch := range info.Branches {
				fmt.Fprintf(out, "  %s\n", branch)
			}

			fmt.Fprintln(out, "recent commits:")

			for _, commit := range info.RecentCommits {
				fmt.Fprintf(out, "  %s  %s  %s\n",
					shortHash(commit.ID),
					commit.When.Format("2006-01-02"),
					firstLine(commit.Message))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a listing")

	return cmd
}
