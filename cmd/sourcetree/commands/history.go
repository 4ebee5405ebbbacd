package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/maikgreubel/sourcetree/pkg/gitlib"
	"github.com/maikgreubel/sourcetree/pkg/history"
)

// ErrEmptyPattern indicates the search pattern argument is empty.
var ErrEmptyPattern = errors.New("pattern must not be empty")

// shortHashLen is the number of hash characters printed in listings.
const shortHashLen = 8

// NewHistoryCommand creates the history subcommand group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Commit log, diffs and diff pattern search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newHistoryLogCommand())
	cmd.AddCommand(newHistorySearchCommand())
	cmd.AddCommand(newHistoryDiffCommand())

	return cmd
}

func newHistoryLogCommand() *cobra.Command {
	var (
		limit       int
		firstParent bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:           "log [path]",
		Short:         "List commits, newest first",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			environment, repo, err := historyEnv(cmd, args)
			if err != nil {
				return err
			}
			defer repo.Free()

			if limit == 0 {
				limit = environment.cfg.History.Limit
			}

			mode := environment.walkMode()
			if firstParent {
				mode = history.WalkFirstParent
			}

			walker := history.NewWalker(repo, mode)

			commits, err := walker.Walk(cmd.Context(), limit)
			if err != nil && !errors.Is(err, history.ErrCycleDetected) {
				return err
			}

			if errors.Is(err, history.ErrCycleDetected) {
				environment.logger.Warn("history contains a parent cycle, log is truncated")
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), commits)
			}

			for _, commit := range commits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n",
					shortHash(commit.ID),
					commit.When.Format("2006-01-02 15:04"),
					commit.Author,
					firstLine(commit.Message))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of commits (0 = configured limit)")
	cmd.Flags().BoolVar(&firstParent, "first-parent", false, "follow only the first parent of merges")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a listing")

	return cmd
}

func newHistorySearchCommand() *cobra.Command {
	var (
		limit      int
		maxResults int
		useRegexp  bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <pattern> [path]",
		Short: "Find commits whose diff added or removed matching lines",
		Long: `Scan commit diffs for a pattern. Only added and removed lines are
examined, never unchanged context. The pattern is a literal substring
unless --regexp is set.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			if pattern == "" {
				return ErrEmptyPattern
			}

			environment, repo, err := historyEnv(cmd, args[1:])
			if err != nil {
				return err
			}
			defer repo.Free()

			mode := history.MatchLiteral
			if useRegexp {
				mode = history.MatchRegexp
			}

			opts := history.SearchOptions{
				Limit:      limit,
				MaxResults: maxResults,
				Mode:       environment.walkMode(),
				Lookahead:  environment.cfg.History.Lookahead,
			}
			if opts.Limit <= 0 {
				opts.Limit = environment.cfg.History.Limit
			}

			if opts.MaxResults <= 0 {
				opts.MaxResults = environment.cfg.History.MaxResults
			}

			engine := history.NewEngine(repo)

			report, err := engine.Search(cmd.Context(), pattern, mode, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			printSearchReport(cmd.OutOrStdout(), report, pattern, useRegexp)

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of commits to scan (0 = configured limit)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "stop after this many matching commits (0 = configured cap)")
	cmd.Flags().BoolVarP(&useRegexp, "regexp", "E", false, "interpret the pattern as a regular expression")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a listing")

	return cmd
}

func newHistoryDiffCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "diff <older> <newer> [path]",
		Short:         "Show the file hunks between two commits",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := historyEnv(cmd, args[2:])
			if err != nil {
				return err
			}
			defer repo.Free()

			hunks, err := repo.Diff(cmd.Context(), history.CommitID(args[0]), history.CommitID(args[1]))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), hunks)
			}

			printHunks(cmd.OutOrStdout(), hunks)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a listing")

	return cmd
}

// historyEnv loads the environment and opens the repository named by the
// optional trailing path argument, falling back to the configured root.
func historyEnv(cmd *cobra.Command, args []string) (*env, *gitlib.Repository, error) {
	environment, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}

	root := environment.cfg.Root
	if len(args) > 0 {
		root = args[0]
	}

	repo, err := environment.openRepository(root)
	if err != nil {
		return nil, nil, err
	}

	return environment, repo, nil
}

// printSearchReport writes matching commits with highlighted match text.
func printSearchReport(out io.Writer, report *history.SearchReport, pattern string, useRegexp bool) {
	highlight := color.New(color.FgRed, color.Bold).SprintFunc()

	for _, result := range report.Matches {
		fmt.Fprintf(out, "%s\n", shortHash(result.Commit))

		for _, match := range result.Matches {
			text := match.Text
			if !useRegexp {
				text = strings.ReplaceAll(text, pattern, highlight(pattern))
			}

			fmt.Fprintf(out, "  %s:%d: %s\n", match.Path, match.Line, text)
		}
	}

	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "skipped %s: %s\n", shortHash(skipped.Commit), skipped.Reason)
	}

	if report.Partial {
		fmt.Fprintln(out, "warning: search ended early, results are partial")
	}
}

// printHunks writes a diff listing with +/- line markers.
func printHunks(out io.Writer, hunks []history.DiffHunk) {
	added := color.New(color.FgGreen).SprintfFunc()
	removed := color.New(color.FgRed).SprintfFunc()

	for _, hunk := range hunks {
		fmt.Fprintf(out, "%s (%s)\n", hunk.Path, hunk.Kind)

		for _, edit := range hunk.Edits {
			switch edit.Kind {
			case history.EditAdded:
				fmt.Fprintln(out, added("+%d %s", edit.Number, edit.Text))
			case history.EditRemoved:
				fmt.Fprintln(out, removed("-%d %s", edit.Number, edit.Text))
			case history.EditContext:
				fmt.Fprintf(out, " %d %s\n", edit.Number, edit.Text)
			}
		}
	}
}

// writeJSON encodes a value with indentation.
func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}

// shortHash abbreviates a commit id for listings.
func shortHash(id history.CommitID) string {
	s := string(id)
	if len(s) > shortHashLen {
		return s[:shortHashLen]
	}

	return s
}

// firstLine returns the first line of a commit message.
func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}

	return message
}
