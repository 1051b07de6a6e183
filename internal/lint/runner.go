package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/internal/notebook"
	"github.com/srulre/classiq-library/internal/qmod"
	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

// Runner applies the rule set to a corpus. Zero Workers means one per
// CPU. Registry may be nil, which skips the timeout rule. Names, when
// set, overrides the base-name map used by the uniqueness rule so a
// partial run (changed files only) still checks against the whole
// library.
type Runner struct {
	Cfg      types.Config
	Registry *timeouts.Registry
	Workers  int
	Names    map[string][]string
}

// Run lints every file in the corpus and returns the sorted report.
// Malformed notebooks become findings; filesystem errors abort the run.
func (r *Runner) Run(ctx context.Context, c *corpus.Corpus) (*types.Report, error) {
	for _, id := range r.Cfg.DisabledRules {
		if !KnownRule(id) {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownRule, id)
		}
	}

	logger := log.WithComponentFromContext(ctx, "lint")
	start := time.Now()
	names := r.Names
	if names == nil {
		names = c.NotebookNames()
	}

	report := &types.Report{Checked: len(c.Notebooks) + len(c.Qmods)}
	var mu sync.Mutex
	collect := func(fs []types.Finding) {
		if len(fs) == 0 {
			return
		}
		mu.Lock()
		report.Add(fs...)
		mu.Unlock()
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rel := range c.Notebooks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fs, err := r.lintNotebook(rel, c, names)
			if err != nil {
				return err
			}
			collect(fs)
			return nil
		})
	}
	for _, rel := range c.Qmods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fs, err := r.lintQmod(rel, c)
			if err != nil {
				return err
			}
			collect(fs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Sort()
	logger.Debug().
		Str("event", "lint_done").
		Int("checked", report.Checked).
		Int("errors", report.Count(types.SeverityError)).
		Int("warnings", report.Count(types.SeverityWarning)).
		Dur("elapsed", time.Since(start)).
		Msg("lint pass complete")
	return report, nil
}

func (r *Runner) lintNotebook(rel string, c *corpus.Corpus, names map[string][]string) ([]types.Finding, error) {
	abs := c.Abs(rel)
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}

	nb, err := notebook.Load(abs)
	if err != nil {
		if errors.Is(err, types.ErrMalformedNotebook) {
			f := finding(RuleNBFormat, types.SeverityError, rel, 0, "not valid nbformat JSON")
			return []types.Finding{f}, nil
		}
		return nil, err
	}

	nctx := &NotebookContext{
		Rel:      rel,
		Abs:      abs,
		Size:     info.Size(),
		NB:       nb,
		Names:    names,
		Registry: r.Registry,
		Cfg:      r.Cfg,
	}

	var out []types.Finding
	for _, rule := range notebookRules {
		if r.Cfg.RuleDisabled(rule.ID) {
			continue
		}
		out = append(out, rule.Check(nctx)...)
	}
	return out, nil
}

func (r *Runner) lintQmod(rel string, c *corpus.Corpus) ([]types.Finding, error) {
	abs := c.Abs(rel)
	q, err := qmod.Load(abs)
	if err != nil {
		return nil, err
	}

	qctx := &QmodContext{Rel: rel, Abs: abs, Q: q, Cfg: r.Cfg}

	var out []types.Finding
	for _, rule := range qmodRules {
		if r.Cfg.RuleDisabled(rule.ID) {
			continue
		}
		out = append(out, rule.Check(qctx)...)
	}
	return out, nil
}
