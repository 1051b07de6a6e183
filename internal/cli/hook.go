// Hook dispatch for pre-commit: each hook filters the changed-file
// list by its patterns and runs one maintenance pass.
// See docs/ARCHITECTURE.md § Hooks.
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/hooks"
	"github.com/srulre/classiq-library/internal/lint"
	"github.com/srulre/classiq-library/internal/log"
)

func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook <id> [files...]",
		Short: "Run one pre-commit hook over the given files",
		Long: `Hook runs a single pre-commit entry point. With files, only those
matching the hook's patterns are considered (pre-commit passes the
changed-file list); without files the whole corpus is used.

Example:
  librarian hook notebook-lint algorithms/grover/grover.ipynb
  librarian hook timeouts-autoadd
  librarian hooks`,
		Args: cobra.MinimumNArgs(1),
		RunE: runHook,
	}
}

func newHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List the pre-commit hook ids and their file patterns",
		Args:  cobra.NoArgs,
		RunE:  runHooks,
	}
}

func runHook(cmd *cobra.Command, args []string) error {
	h, err := hooks.Lookup(args[0])
	if err != nil {
		return err
	}

	ctx := log.ContextWithHookID(cmd.Context(), h.ID)
	henv := hooks.Env{Root: env.Root, Cfg: env.Cfg}
	res, err := henv.Execute(ctx, h, args[1:])
	if err != nil {
		return sysErr(fmt.Errorf("running hook %s: %w", h.ID, err))
	}

	out := cmd.OutOrStdout()
	if res.Skipped {
		fmt.Fprintf(out, "%s: no matching files.\n", h.ID)
		return nil
	}

	if flags.jsonMode {
		if err := printJSON(cmd, res); err != nil {
			return sysErr(err)
		}
	} else {
		if res.Report != nil {
			if err := lint.WriteText(out, res.Report); err != nil {
				return sysErr(err)
			}
		}
		for _, name := range res.Added {
			fmt.Fprintf(out, "added %s (%s)\n", name, formatSeconds(env.Cfg.DefaultTimeout))
		}
		for _, name := range res.Removed {
			fmt.Fprintf(out, "removed %s\n", name)
		}
	}

	if res.Fails() {
		if res.Changed {
			return fmt.Errorf("%s updated the timeout registry; restage %s", h.ID, env.Cfg.RegistryPath)
		}
		return fmt.Errorf("%s found problems", h.ID)
	}
	return nil
}

func runHooks(cmd *cobra.Command, args []string) error {
	all := hooks.All()
	if flags.jsonMode {
		if err := printJSON(cmd, all); err != nil {
			return sysErr(err)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION\tPATTERNS")
	fmt.Fprintln(w, "--\t-----------\t--------")
	for _, h := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.ID, h.Description, strings.Join(h.Patterns, " "))
	}
	return w.Flush()
}
