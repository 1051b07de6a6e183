package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/srulre/classiq-library/internal/corpus"
	"github.com/srulre/classiq-library/internal/lint"
	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

// Env carries what hook execution needs from the CLI.
type Env struct {
	Root    string
	Cfg     types.Config
	Workers int
}

// Result is the outcome of one hook run. Lint-style hooks fill Report;
// the timeout hooks fill Added/Removed and set Changed when the
// registry file was rewritten.
type Result struct {
	Hook    Hook          `json:"hook"`
	Skipped bool          `json:"skipped,omitempty"`
	Report  *types.Report `json:"report,omitempty"`
	Added   []string      `json:"added,omitempty"`
	Removed []string      `json:"removed,omitempty"`
	Changed bool          `json:"changed,omitempty"`
}

// Fails reports whether the run should fail the commit: either the
// registry changed (restage and retry) or an error-severity finding.
func (r *Result) Fails() bool {
	if r.Changed {
		return true
	}
	return r.Report != nil && r.Report.FailsAt(types.SeverityError)
}

// Execute runs one hook. A nil or empty files list means the whole
// corpus; otherwise files is the changed-file list and the hook only
// considers matches. A non-nil error is a system failure, not a
// finding.
func (e Env) Execute(ctx context.Context, h Hook, files []string) (*Result, error) {
	res := &Result{Hook: h}
	if len(files) == 0 {
		files = nil
	}
	matched := files
	if files != nil {
		matched = h.Match(files)
		if len(matched) == 0 {
			res.Skipped = true
			return res, nil
		}
	}

	logger := log.WithComponentFromContext(ctx, "hooks")
	logger.Debug().
		Str("event", "hook_run").
		Str("hook", h.ID).
		Int("files", len(matched)).
		Msg("running hook")

	var err error
	switch h.ID {
	case NotebookLint:
		res.Report, err = e.runLintHook(ctx, res, matched, matched)
	case QmodLint:
		res.Report, err = e.runLintHook(ctx, res, matched, qmodTargets(matched))
	case TimeoutsAutoadd:
		err = e.runTimeouts(ctx, res, true)
	case TimeoutsCleanup:
		err = e.runTimeouts(ctx, res, false)
	case YAMLCheck:
		res.Report, err = e.runYAMLCheck(matched)
	default:
		err = fmt.Errorf("%w: %q", types.ErrUnknownHook, h.ID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// runLintHook lints targets, or the whole corpus when the hook was
// invoked without a file list. A changed-file list whose every target
// has since been deleted lints nothing rather than everything.
func (e Env) runLintHook(ctx context.Context, res *Result, matched, targets []string) (*types.Report, error) {
	if matched == nil {
		return e.runLint(ctx, nil)
	}
	targets = e.existing(targets)
	if len(targets) == 0 {
		res.Skipped = true
		return &types.Report{}, nil
	}
	return e.runLint(ctx, targets)
}

// qmodTargets maps companion JSON files back to their qmod source so a
// companion-only change still lints the pair.
func qmodTargets(matched []string) []string {
	if matched == nil {
		return nil
	}
	set := make(map[string]bool)
	var out []string
	for _, f := range matched {
		q := f
		switch {
		case strings.HasSuffix(f, types.SynthesisOptionsSuffix):
			q = strings.TrimSuffix(f, types.SynthesisOptionsSuffix) + corpus.QmodExt
		case strings.HasSuffix(f, types.MetadataSuffix):
			q = strings.TrimSuffix(f, types.MetadataSuffix) + corpus.QmodExt
		}
		if !set[q] {
			set[q] = true
			out = append(out, q)
		}
	}
	return out
}

func (e Env) existing(files []string) []string {
	var out []string
	for _, f := range files {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(e.Root, filepath.FromSlash(f))
		}
		if _, err := os.Stat(abs); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// runLint lints the target files (nil means the whole corpus) with the
// uniqueness map always taken from a full library scan.
func (e Env) runLint(ctx context.Context, targets []string) (*types.Report, error) {
	full, err := corpus.Discover(e.Root, e.Cfg)
	if err != nil {
		return nil, err
	}

	target := full
	if targets != nil {
		target, err = corpus.FromPaths(e.Root, e.Cfg, targets)
		if err != nil {
			return nil, err
		}
	}

	reg, err := timeouts.Load(timeouts.ResolvePath(e.Root, e.Cfg))
	if err != nil {
		return nil, err
	}

	runner := &lint.Runner{
		Cfg:      e.Cfg,
		Registry: reg,
		Workers:  e.Workers,
		Names:    full.NotebookNames(),
	}
	return runner.Run(ctx, target)
}

func (e Env) runTimeouts(ctx context.Context, res *Result, add bool) error {
	full, err := corpus.Discover(e.Root, e.Cfg)
	if err != nil {
		return err
	}
	reg, err := timeouts.Load(timeouts.ResolvePath(e.Root, e.Cfg))
	if err != nil {
		return err
	}

	names := full.NotebookNames()
	if add {
		res.Added = reg.SyncAdd(names, e.Cfg.DefaultTimeout)
	} else {
		res.Removed = reg.SyncRemove(names)
	}

	if len(res.Added)+len(res.Removed) == 0 {
		return nil
	}
	if err := reg.Write(); err != nil {
		return err
	}
	res.Changed = true

	logger := log.WithComponentFromContext(ctx, "hooks")
	logger.Info().
		Str("event", "registry_rewritten").
		Int("added", len(res.Added)).
		Int("removed", len(res.Removed)).
		Msg("timeout registry updated")
	return nil
}

// runYAMLCheck parses each matched YAML file; the timeout registry
// additionally passes schema validation. With no file list it checks
// just the registry.
func (e Env) runYAMLCheck(matched []string) (*types.Report, error) {
	registryAbs := timeouts.ResolvePath(e.Root, e.Cfg)
	if len(matched) == 0 {
		matched = []string{registryAbs}
	}

	rep := &types.Report{Checked: len(matched)}
	for _, f := range matched {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(e.Root, filepath.FromSlash(f))
		}
		rel := relPath(e.Root, abs)

		raw, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}

		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			rep.Add(types.Finding{
				Rule:     RuleYAMLParse,
				Severity: types.SeverityError,
				Path:     rel,
				Message:  fmt.Sprintf("not valid YAML: %v", err),
			})
			continue
		}

		if sameFile(abs, registryAbs) {
			for _, verr := range timeouts.ValidateSchema(raw) {
				rep.Add(types.Finding{
					Rule:     RuleRegistrySchema,
					Severity: types.SeverityError,
					Path:     rel,
					Message:  verr.Error(),
				})
			}
		}
	}
	rep.Sort()
	return rep, nil
}

func relPath(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
