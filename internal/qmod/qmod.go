// Package qmod scans qmod sources at the surface level. It does not
// parse the language: linting only needs declaration names, bracket
// balance, and whitespace hygiene, all of which fall out of a line
// scan. See docs/ARCHITECTURE.md § Lint Engine.
package qmod

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/srulre/classiq-library/pkg/types"
)

var declRE = regexp.MustCompile(`^\s*(qfunc|qstruct)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// Load reads and scans the qmod source at path.
func Load(path string) (*types.Qmod, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading qmod: %w", err)
	}
	q := Scan(string(raw))
	q.Path = path
	base := filepath.Base(path)
	q.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return q, nil
}

// Scan collects the declarations of a qmod source. Declarations inside
// comments are skipped; the scanner does not chase multi-line forms
// because qmod declaration headers start at column zero in practice.
func Scan(source string) *types.Qmod {
	q := &types.Qmod{Source: source}
	for i, line := range strings.Split(source, "\n") {
		stripped := stripLineComment(line)
		m := declRE.FindStringSubmatch(stripped)
		if m == nil {
			continue
		}
		kind := types.DeclQFunc
		if m[1] == "qstruct" {
			kind = types.DeclQStruct
		}
		q.Decls = append(q.Decls, types.QmodDecl{
			Kind: kind,
			Name: m[2],
			Line: i + 1,
		})
		if kind == types.DeclQFunc && m[2] == "main" {
			q.HasMain = true
		}
	}
	return q
}

// Imbalance reports the first bracket mismatch in source, ignoring
// comments and string literals. A zero line means the source is
// balanced.
func Imbalance(source string) (line int, message string) {
	type opener struct {
		r    rune
		line int
	}
	var stack []opener
	closers := map[rune]rune{')': '(', ']': '[', '}': '{'}

	ln := 1
	inString := false
	escaped := false
	inComment := false
	var prev rune

	for _, r := range source {
		if r == '\n' {
			ln++
			inComment = false
			prev = 0
			continue
		}
		if inComment {
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			prev = r
			continue
		}
		switch r {
		case '"':
			inString = true
		case '/':
			if prev == '/' {
				inComment = true
			}
		case '(', '[', '{':
			stack = append(stack, opener{r: r, line: ln})
		case ')', ']', '}':
			want := closers[r]
			if len(stack) == 0 {
				return ln, fmt.Sprintf("unmatched %q", r)
			}
			top := stack[len(stack)-1]
			if top.r != want {
				return ln, fmt.Sprintf("%q closes %q opened on line %d", r, top.r, top.line)
			}
			stack = stack[:len(stack)-1]
		}
		prev = r
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return top.line, fmt.Sprintf("unclosed %q", top.r)
	}
	return 0, ""
}

// TrailingWhitespace returns the 1-based lines ending in spaces or tabs.
func TrailingWhitespace(source string) []int {
	var lines []int
	for i, line := range strings.Split(source, "\n") {
		if line != strings.TrimRight(line, " \t") {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// EndsWithNewline reports whether a non-empty source ends in a newline.
func EndsWithNewline(source string) bool {
	return source == "" || strings.HasSuffix(source, "\n")
}

// Companions returns the companion JSON files sitting next to absPath,
// in a fixed order. Only files that exist are returned.
func Companions(absPath string) []string {
	stem := strings.TrimSuffix(absPath, filepath.Ext(absPath))
	var out []string
	for _, suffix := range []string{types.SynthesisOptionsSuffix, types.MetadataSuffix} {
		p := stem + suffix
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func stripLineComment(line string) string {
	inString := false
	escaped := false
	var prev rune
	for i, r := range line {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			prev = r
			continue
		}
		if r == '"' {
			inString = true
		} else if r == '/' && prev == '/' {
			return line[:i-1]
		}
		prev = r
	}
	return line
}
