// The lint command runs the convention rule set over the corpus.
// See docs/ARCHITECTURE.md § Lint Engine.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/index"
	"github.com/srulre/classiq-library/internal/lint"
	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/pkg/types"
)

var lintFlags struct {
	failOn string
	jsonl  string
	record bool
}

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check notebooks and qmod sources against library conventions",
		Long: `Lint runs the notebook and qmod rule sets over the given paths
(default: every configured corpus root) and prints the findings,
sorted by path, line, and rule.

Example:
  librarian lint
  librarian lint algorithms/grover
  librarian lint --json --fail-on warning
  librarian lint --record --jsonl findings.jsonl`,
		RunE: runLint,
	}

	cmd.Flags().StringVar(&lintFlags.failOn, "fail-on", "error", "severity that fails the run (warning or error)")
	cmd.Flags().StringVar(&lintFlags.jsonl, "jsonl", "", "write findings as JSON Lines to this file")
	cmd.Flags().BoolVar(&lintFlags.record, "record", false, "record the run and findings in the cache index")

	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	threshold, err := types.ParseSeverity(lintFlags.failOn)
	if err != nil {
		return fmt.Errorf("parsing --fail-on: %w", err)
	}

	runID := index.NewRunID()
	ctx := log.ContextWithRunID(cmd.Context(), runID)

	rep, err := lintPaths(ctx, args)
	if err != nil {
		return err
	}

	if lintFlags.record {
		if err := recordRun(ctx, runID, rep); err != nil {
			return err
		}
	}
	if lintFlags.jsonl != "" {
		if err := index.WriteFindingsJSONL(lintFlags.jsonl, rep.Findings); err != nil {
			return sysErr(err)
		}
	}

	if err := renderReport(cmd, rep); err != nil {
		return sysErr(err)
	}

	if rep.FailsAt(threshold) {
		return fmt.Errorf("%d findings at %s or above", findingsAtOrAbove(rep, threshold), threshold)
	}
	return nil
}

// lintPaths lints explicit paths, or the whole corpus when none are
// given. Name uniqueness is always checked against the full library.
func lintPaths(ctx context.Context, args []string) (*types.Report, error) {
	full, err := discoverCorpus()
	if err != nil {
		return nil, err
	}

	target := full
	if len(args) > 0 {
		target, err = corpus.FromPaths(env.Root, env.Cfg, args)
		if err != nil {
			return nil, err
		}
	}

	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	runner := &lint.Runner{
		Cfg:      env.Cfg,
		Registry: reg,
		Names:    full.NotebookNames(),
	}
	return runner.Run(ctx, target)
}

func recordRun(ctx context.Context, runID string, rep *types.Report) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordRun(ctx, runID, rep); err != nil {
		return sysErr(err)
	}

	logger := log.WithComponentFromContext(ctx, "cli")
	logger.Info().
		Str("event", "run_recorded").
		Int("checked", rep.Checked).
		Int("findings", len(rep.Findings)).
		Msg("recorded lint run")
	return nil
}

// findingsAtOrAbove counts findings at or above the threshold severity.
func findingsAtOrAbove(rep *types.Report, threshold types.Severity) int {
	n := 0
	for _, f := range rep.Findings {
		if f.Severity >= threshold {
			n++
		}
	}
	return n
}
