// The index and stats commands maintain and query the disposable
// corpus cache. See docs/ARCHITECTURE.md § Cache Index.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/index"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the corpus cache database",
		Long: `Index walks the corpus and rebuilds the SQLite cache with one row per
notebook and qmod file. The library files stay the source of truth;
deleting the cache loses nothing.`,
		Args: cobra.NoArgs,
		RunE: runIndex,
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus counts, the latest recorded lint run, and the heaviest timeouts",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	full, err := discoverCorpus()
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Rebuild(cmd.Context(), full, reg)
	if err != nil {
		return sysErr(err)
	}

	if flags.jsonMode {
		return printJSON(cmd, sum)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d notebook(s) and %d qmod file(s) into %s.\n",
		sum.Notebooks, sum.Qmods, store.Path())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(cmd.Context())
	if err != nil {
		return sysErr(err)
	}

	if flags.jsonMode {
		return printJSON(cmd, st)
	}
	return index.WriteStats(cmd.OutOrStdout(), st)
}
