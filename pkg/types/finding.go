package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity classifies how serious a finding is. Warnings surface in the
// report but only errors fail a default lint run.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// severityNames maps severities to their canonical string form.
var severityNames = map[Severity]string{
	SeverityWarning: "warning",
	SeverityError:   "error",
}

// String returns the canonical lower-case name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts a string to a Severity.
// Returns ErrUnknownSeverity for anything other than "warning" or "error".
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Finding is a single convention violation reported by a lint rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"` // 1-based; 0 means whole file
	Message  string   `json:"message"`
}

// Report aggregates the findings of one lint run.
type Report struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

// Add appends findings to the report.
func (r *Report) Add(fs ...Finding) {
	r.Findings = append(r.Findings, fs...)
}

// Merge folds another report into this one.
func (r *Report) Merge(other Report) {
	r.Checked += other.Checked
	r.Findings = append(r.Findings, other.Findings...)
}

// Sort orders findings by path, then line, then rule id. Reports are
// sorted before rendering so output is stable regardless of worker
// scheduling.
func (r *Report) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// Count returns the number of findings with the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// FailsAt reports whether any finding meets or exceeds the threshold.
func (r *Report) FailsAt(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return true
		}
	}
	return false
}
