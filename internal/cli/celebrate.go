// The celebrate command is the CI job that thanks contributors when
// their pull request merges. See docs/ARCHITECTURE.md § GitHub
// Automation.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/github"
	"github.com/srulre/classiq-library/pkg/types"
)

var celebrateFlags struct {
	pr     int
	dryRun bool
	owner  string
	repo   string
}

func newCelebrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "celebrate --pr N",
		Short: "Post the merged-PR celebration comment",
		Long: `Celebrate looks up a pull request and, when it is merged, counts the
author's merged pull requests in the repository and posts a thank-you
comment with the running total. Unmerged pull requests are a no-op.

The GitHub token is read from GITHUB_TOKEN.

Example:
  librarian celebrate --pr 4242
  librarian celebrate --pr 4242 --dry-run`,
		Args: cobra.NoArgs,
		RunE: runCelebrate,
	}

	cmd.Flags().IntVar(&celebrateFlags.pr, "pr", 0, "pull request number")
	cmd.Flags().BoolVar(&celebrateFlags.dryRun, "dry-run", false, "compose the comment without posting")
	cmd.Flags().StringVar(&celebrateFlags.owner, "owner", "", "repository owner (default: config)")
	cmd.Flags().StringVar(&celebrateFlags.repo, "repo", "", "repository name (default: config)")
	cmd.MarkFlagRequired("pr")

	return cmd
}

func runCelebrate(cmd *cobra.Command, args []string) error {
	gcfg := env.Cfg.GitHub
	if celebrateFlags.owner != "" {
		gcfg.Owner = celebrateFlags.owner
	}
	if celebrateFlags.repo != "" {
		gcfg.Repo = celebrateFlags.repo
	}
	if gcfg.Owner == "" || gcfg.Repo == "" {
		return errors.New("github owner and repo must be set via config or --owner/--repo")
	}

	client := github.New(gcfg, os.Getenv(github.TokenEnv))
	cel, err := client.Celebrate(cmd.Context(), celebrateFlags.pr, celebrateFlags.dryRun)
	if err != nil {
		if errors.Is(err, types.ErrNoToken) {
			return err
		}
		return sysErr(err)
	}

	if flags.jsonMode {
		if err := printJSON(cmd, cel); err != nil {
			return sysErr(err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	switch {
	case cel.Message == "":
		fmt.Fprintf(out, "Pull request #%d is not merged; nothing to celebrate.\n", celebrateFlags.pr)
	case cel.Posted:
		fmt.Fprintf(out, "Commented on #%d: %d merged pull requests for @%s.\n",
			celebrateFlags.pr, cel.MergedCount, cel.PR.User.Login)
	default:
		fmt.Fprintln(out, cel.Message)
	}
	return nil
}
