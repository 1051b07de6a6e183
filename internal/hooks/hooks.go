// Package hooks exposes the pre-commit entry points: each hook pairs a
// file-pattern trigger with one of the maintenance operations, so a
// commit-time runner can hand over its changed-file list and get back
// findings or a registry rewrite. See docs/ARCHITECTURE.md § Hooks.
package hooks

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/srulre/classiq-library/pkg/types"
)

// Hook ids.
const (
	NotebookLint    = "notebook-lint"
	QmodLint        = "qmod-lint"
	TimeoutsAutoadd = "timeouts-autoadd"
	TimeoutsCleanup = "timeouts-cleanup"
	YAMLCheck       = "yaml-check"
)

// Finding rules produced by the yaml-check hook.
const (
	RuleYAMLParse      = "yaml/parse"
	RuleRegistrySchema = "yaml/registry-schema"
)

// Hook describes one pre-commit entry point. Patterns are shell globs
// matched against file base names.
type Hook struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Patterns    []string `json:"patterns"`
}

var table = []Hook{
	{
		ID:          NotebookLint,
		Description: "run the notebook convention rules over changed notebooks",
		Patterns:    []string{"*.ipynb"},
	},
	{
		ID:          QmodLint,
		Description: "run the qmod convention rules over changed qmod sources and companions",
		Patterns:    []string{"*.qmod", "*" + types.SynthesisOptionsSuffix, "*" + types.MetadataSuffix},
	},
	{
		ID:          TimeoutsAutoadd,
		Description: "insert default timeout entries for unregistered notebooks",
		Patterns:    []string{"*.ipynb"},
	},
	{
		ID:          TimeoutsCleanup,
		Description: "drop timeout entries whose notebook no longer exists",
		Patterns:    []string{"timeouts.yaml", "*.ipynb"},
	},
	{
		ID:          YAMLCheck,
		Description: "check that YAML files parse, with schema validation for the timeout registry",
		Patterns:    []string{"*.yaml", "*.yml"},
	},
}

// All returns the hooks in registration order.
func All() []Hook {
	out := make([]Hook, len(table))
	copy(out, table)
	return out
}

// Lookup finds a hook by id. Unknown ids return ErrUnknownHook naming
// the valid ones.
func Lookup(id string) (Hook, error) {
	for _, h := range table {
		if h.ID == id {
			return h, nil
		}
	}
	ids := make([]string, len(table))
	for i, h := range table {
		ids[i] = h.ID
	}
	return Hook{}, fmt.Errorf("%w: %q (valid: %s)", types.ErrUnknownHook, id, strings.Join(ids, ", "))
}

// Match filters files down to those whose base name matches one of the
// hook's patterns. The result is sorted and duplicate-free.
func (h Hook) Match(files []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range files {
		if seen[f] {
			continue
		}
		base := filepath.Base(filepath.FromSlash(f))
		for _, pattern := range h.Patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				out = append(out, f)
				seen[f] = true
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
