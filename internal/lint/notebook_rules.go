package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/srulre/classiq-library/pkg/types"
)

// notebookRules lists the notebook checks in rule-id order. Findings on
// a specific cell carry the 1-based cell ordinal in Line.
var notebookRules = []NotebookRule{
	{ID: RuleNBFormat, Check: checkNBFormat},
	{ID: RuleNBFilename, Check: checkNBFilename},
	{ID: RuleNBUnique, Check: checkNBUnique},
	{ID: RuleNBKernel, Check: checkNBKernel},
	{ID: RuleNBEmptyCell, Check: checkNBEmptyCell},
	{ID: RuleNBExecutionOrder, Check: checkNBExecutionOrder},
	{ID: RuleNBLinks, Check: checkNBLinks},
	{ID: RuleNBTimeout, Check: checkNBTimeout},
	{ID: RuleNBSize, Check: checkNBSize},
}

func checkNBFormat(ctx *NotebookContext) []types.Finding {
	if ctx.NB.NBFormat == 4 {
		return nil
	}
	msg := fmt.Sprintf("nbformat %d.%d, want 4.x", ctx.NB.NBFormat, ctx.NB.NBFormatMinor)
	return []types.Finding{finding(RuleNBFormat, types.SeverityError, ctx.Rel, 0, msg)}
}

func checkNBFilename(ctx *NotebookContext) []types.Finding {
	if snakeCaseRE.MatchString(ctx.NB.Name) {
		return nil
	}
	msg := fmt.Sprintf("base name %q is not lower_snake_case", ctx.NB.Name)
	return []types.Finding{finding(RuleNBFilename, types.SeverityError, ctx.Rel, 0, msg)}
}

func checkNBUnique(ctx *NotebookContext) []types.Finding {
	paths := ctx.Names[ctx.NB.Name]
	if len(paths) < 2 {
		return nil
	}
	others := make([]string, 0, len(paths)-1)
	for _, p := range paths {
		if p != ctx.Rel {
			others = append(others, p)
		}
	}
	msg := fmt.Sprintf("base name %q also used by %s", ctx.NB.Name, strings.Join(others, ", "))
	return []types.Finding{finding(RuleNBUnique, types.SeverityError, ctx.Rel, 0, msg)}
}

func checkNBKernel(ctx *NotebookContext) []types.Finding {
	spec := ctx.NB.Metadata.Kernelspec
	if spec.Name == "" {
		return []types.Finding{finding(RuleNBKernel, types.SeverityError, ctx.Rel, 0, "kernelspec missing")}
	}
	if spec.Name != "python3" {
		msg := fmt.Sprintf("kernel %q, want python3", spec.Name)
		return []types.Finding{finding(RuleNBKernel, types.SeverityError, ctx.Rel, 0, msg)}
	}
	return nil
}

func checkNBEmptyCell(ctx *NotebookContext) []types.Finding {
	var out []types.Finding
	for i, cell := range ctx.NB.Cells {
		if cell.IsCode() && cell.Empty() {
			out = append(out, finding(RuleNBEmptyCell, types.SeverityError, ctx.Rel, i+1, "empty code cell"))
		}
	}
	return out
}

// checkNBExecutionOrder warns when the executed code cells are not
// numbered 1..N in document order. Fully unexecuted notebooks pass;
// the first deviation is reported and the rest skipped, since one gap
// shifts every later count.
func checkNBExecutionOrder(ctx *NotebookContext) []types.Finding {
	executed := false
	for _, cell := range ctx.NB.Cells {
		if cell.IsCode() && cell.ExecutionCount != nil {
			executed = true
			break
		}
	}
	if !executed {
		return nil
	}

	want := 1
	for i, cell := range ctx.NB.Cells {
		if !cell.IsCode() {
			continue
		}
		if cell.ExecutionCount == nil {
			msg := fmt.Sprintf("code cell %d not executed", i+1)
			return []types.Finding{finding(RuleNBExecutionOrder, types.SeverityWarning, ctx.Rel, i+1, msg)}
		}
		if *cell.ExecutionCount != want {
			msg := fmt.Sprintf("code cell %d has execution count %d, want %d", i+1, *cell.ExecutionCount, want)
			return []types.Finding{finding(RuleNBExecutionOrder, types.SeverityWarning, ctx.Rel, i+1, msg)}
		}
		want++
	}
	return nil
}

// mdLinkRE grabs markdown link and image targets, dropping an optional
// quoted title.
var mdLinkRE = regexp.MustCompile(`\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

func checkNBLinks(ctx *NotebookContext) []types.Finding {
	var out []types.Finding
	dir := filepath.Dir(ctx.Abs)
	for i, cell := range ctx.NB.Cells {
		if !cell.IsMarkdown() {
			continue
		}
		for _, m := range mdLinkRE.FindAllStringSubmatch(cell.Source.String(), -1) {
			target := m[1]
			if externalLink(target) {
				continue
			}
			rel := stripLinkSuffix(target)
			if rel == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
				msg := fmt.Sprintf("broken relative link %q", target)
				out = append(out, finding(RuleNBLinks, types.SeverityError, ctx.Rel, i+1, msg))
			}
		}
	}
	return out
}

// externalLink reports targets the corpus cannot resolve locally:
// full URLs, mail links, in-page anchors, and site-absolute paths.
func externalLink(target string) bool {
	return strings.Contains(target, "://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, "/")
}

func stripLinkSuffix(target string) string {
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	return target
}

func checkNBTimeout(ctx *NotebookContext) []types.Finding {
	if ctx.Registry == nil {
		return nil
	}
	seconds, ok := ctx.Registry.Get(ctx.NB.Name)
	if !ok {
		msg := fmt.Sprintf("no timeout registry entry for %q; run librarian timeouts sync", ctx.NB.Name)
		return []types.Finding{finding(RuleNBTimeout, types.SeverityError, ctx.Rel, 0, msg)}
	}
	if seconds <= 0 {
		msg := fmt.Sprintf("timeout for %q is %v, want a positive number of seconds", ctx.NB.Name, seconds)
		return []types.Finding{finding(RuleNBTimeout, types.SeverityError, ctx.Rel, 0, msg)}
	}
	return nil
}

func checkNBSize(ctx *NotebookContext) []types.Finding {
	budget := ctx.Cfg.MaxNotebookBytes
	if budget <= 0 || ctx.Size <= budget {
		return nil
	}
	msg := fmt.Sprintf("notebook is %d bytes, budget %d; clear bulky outputs", ctx.Size, budget)
	return []types.Finding{finding(RuleNBSize, types.SeverityWarning, ctx.Rel, 0, msg)}
}
