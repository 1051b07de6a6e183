// The watch command re-lints corpus files as they change.
// See docs/ARCHITECTURE.md § Watch Loop.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/watch"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-lint notebooks and qmod sources as they change",
		Long: `Watch monitors the corpus roots and re-lints changed notebooks and
qmod sources after a short debounce. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	w := &watch.Watcher{
		Root: env.Root,
		Cfg:  env.Cfg,
		Out:  cmd.OutOrStdout(),
	}
	if err := w.Run(cmd.Context()); err != nil {
		return sysErr(err)
	}
	return nil
}
