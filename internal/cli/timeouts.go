// The timeouts command keeps the execution-timeout registry in step
// with the corpus. See docs/ARCHITECTURE.md § Timeout Registry.
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// syncOutcome is the JSON shape of timeouts sync and check runs.
type syncOutcome struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Stale   []string `json:"stale,omitempty"`
	Changed bool     `json:"changed"`
}

func newTimeoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeouts",
		Short: "Manage the notebook execution-timeout registry",
	}
	cmd.AddCommand(newTimeoutsSyncCmd())
	cmd.AddCommand(newTimeoutsCheckCmd())
	return cmd
}

func newTimeoutsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Register missing notebooks and drop stale entries",
		Long: `Sync inserts a default-timeout entry for every notebook missing one,
removes entries whose notebook is gone, and rewrites the registry
sorted by key. The command exits 1 when the file changed, following
the pre-commit convention that a mutating hook fails so the user
restages.`,
		Args: cobra.NoArgs,
		RunE: runTimeoutsSync,
	}
}

func newTimeoutsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report registry drift without writing",
		Args:  cobra.NoArgs,
		RunE:  runTimeoutsCheck,
	}
}

func runTimeoutsSync(cmd *cobra.Command, args []string) error {
	full, err := discoverCorpus()
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	added, removed := reg.Sync(full.NotebookNames(), env.Cfg.DefaultTimeout)
	changed := len(added)+len(removed) > 0
	if changed {
		if err := reg.Write(); err != nil {
			return sysErr(err)
		}
	}

	if flags.jsonMode {
		if err := printJSON(cmd, syncOutcome{Added: added, Removed: removed, Changed: changed}); err != nil {
			return sysErr(err)
		}
	} else if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Registry up to date: %d entries.\n", reg.Len())
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, name := range added {
			fmt.Fprintf(w, "added\t%s\t%s\n", name, formatSeconds(env.Cfg.DefaultTimeout))
		}
		for _, name := range removed {
			fmt.Fprintf(w, "removed\t%s\t\n", name)
		}
		w.Flush()
	}

	if changed {
		return fmt.Errorf("registry updated (%d added, %d removed); restage %s",
			len(added), len(removed), env.Cfg.RegistryPath)
	}
	return nil
}

func runTimeoutsCheck(cmd *cobra.Command, args []string) error {
	full, err := discoverCorpus()
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	missing, stale := reg.Diff(full.NotebookNames())
	drift := len(missing)+len(stale) > 0

	if flags.jsonMode {
		if err := printJSON(cmd, syncOutcome{Missing: missing, Stale: stale, Changed: drift}); err != nil {
			return sysErr(err)
		}
	} else if !drift {
		fmt.Fprintf(cmd.OutOrStdout(), "Registry in sync: %d entries.\n", reg.Len())
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, name := range missing {
			fmt.Fprintf(w, "missing\t%s\n", name)
		}
		for _, name := range stale {
			fmt.Fprintf(w, "stale\t%s\n", name)
		}
		w.Flush()
	}

	if drift {
		return fmt.Errorf("registry drift: %d missing, %d stale; run librarian timeouts sync",
			len(missing), len(stale))
	}
	return nil
}
