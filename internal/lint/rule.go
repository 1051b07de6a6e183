// Package lint implements the corpus convention rules and the parallel
// runner that applies them. Rules inspect loaded files (the link and
// companion rules also stat targets on disk); the runner owns loading,
// fan-out, and report assembly.
// See docs/ARCHITECTURE.md § Lint Engine.
package lint

import (
	"regexp"
	"sort"

	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

// Notebook rule ids.
const (
	RuleNBFormat         = "nb/format"
	RuleNBFilename       = "nb/filename"
	RuleNBUnique         = "nb/unique"
	RuleNBKernel         = "nb/kernel"
	RuleNBEmptyCell      = "nb/empty-cell"
	RuleNBExecutionOrder = "nb/execution-order"
	RuleNBLinks          = "nb/links"
	RuleNBTimeout        = "nb/timeout"
	RuleNBSize           = "nb/size"
)

// Qmod rule ids.
const (
	RuleQmodFilename           = "qmod/filename"
	RuleQmodMain               = "qmod/main"
	RuleQmodBalanced           = "qmod/balanced"
	RuleQmodTrailingWhitespace = "qmod/trailing-whitespace"
	RuleQmodFinalNewline       = "qmod/final-newline"
	RuleQmodCompanions         = "qmod/companions"
)

// NotebookContext carries everything a notebook rule may inspect. Rel
// is the corpus-relative path used in findings; Names is the corpus
// base-name map for uniqueness checks.
type NotebookContext struct {
	Rel      string
	Abs      string
	Size     int64
	NB       *types.Notebook
	Names    map[string][]string
	Registry *timeouts.Registry
	Cfg      types.Config
}

// QmodContext carries everything a qmod rule may inspect.
type QmodContext struct {
	Rel string
	Abs string
	Q   *types.Qmod
	Cfg types.Config
}

// NotebookRule checks one parsed notebook.
type NotebookRule struct {
	ID    string
	Check func(*NotebookContext) []types.Finding
}

// QmodRule checks one scanned qmod source.
type QmodRule struct {
	ID    string
	Check func(*QmodContext) []types.Finding
}

// RuleIDs returns every known rule id, sorted.
func RuleIDs() []string {
	ids := make([]string, 0, len(notebookRules)+len(qmodRules))
	for _, r := range notebookRules {
		ids = append(ids, r.ID)
	}
	for _, r := range qmodRules {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

// KnownRule reports whether id names a rule.
func KnownRule(id string) bool {
	for _, r := range notebookRules {
		if r.ID == id {
			return true
		}
	}
	for _, r := range qmodRules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// snakeCaseRE accepts ASCII lower_snake_case names. Leading digits are
// allowed: the corpus names notebooks like 3_sat_grover.
var snakeCaseRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func finding(rule string, sev types.Severity, path string, line int, msg string) types.Finding {
	return types.Finding{Rule: rule, Severity: sev, Path: path, Line: line, Message: msg}
}
