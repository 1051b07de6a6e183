// Shared helpers for librarian subcommands.
package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/index"
	"github.com/srulre/classiq-library/internal/lint"
	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

// discoverCorpus walks the configured roots of the resolved library.
// Walk failures are system errors.
func discoverCorpus() (*corpus.Corpus, error) {
	c, err := corpus.Discover(env.Root, env.Cfg)
	if err != nil {
		return nil, sysErr(fmt.Errorf("scanning corpus: %w", err))
	}
	return c, nil
}

// loadRegistry loads the timeout registry of the resolved library. A
// malformed registry is the user's to fix, so the error stays untagged.
func loadRegistry() (*timeouts.Registry, error) {
	return timeouts.Load(timeouts.ResolvePath(env.Root, env.Cfg))
}

// openStore opens the cache index under the resolved cache dir. The
// caller must close it.
func openStore() (*index.Store, error) {
	store, err := index.Open(env.CacheDir)
	if err != nil {
		return nil, sysErr(err)
	}
	return store, nil
}

// renderReport writes a lint report as text or JSON per the global
// --json flag.
func renderReport(cmd *cobra.Command, rep *types.Report) error {
	if flags.jsonMode {
		return lint.WriteJSON(cmd.OutOrStdout(), rep)
	}
	return lint.WriteText(cmd.OutOrStdout(), rep)
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// formatSeconds renders a timeout for humans: whole seconds without a
// fractional part.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}
