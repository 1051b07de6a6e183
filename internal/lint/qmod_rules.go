package lint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/srulre/classiq-library/internal/qmod"
	"github.com/srulre/classiq-library/pkg/types"
)

// qmodRules lists the qmod checks in rule-id order.
var qmodRules = []QmodRule{
	{ID: RuleQmodFilename, Check: checkQmodFilename},
	{ID: RuleQmodMain, Check: checkQmodMain},
	{ID: RuleQmodBalanced, Check: checkQmodBalanced},
	{ID: RuleQmodTrailingWhitespace, Check: checkQmodTrailingWhitespace},
	{ID: RuleQmodFinalNewline, Check: checkQmodFinalNewline},
	{ID: RuleQmodCompanions, Check: checkQmodCompanions},
}

func checkQmodFilename(ctx *QmodContext) []types.Finding {
	if snakeCaseRE.MatchString(ctx.Q.Name) {
		return nil
	}
	msg := fmt.Sprintf("base name %q is not lower_snake_case", ctx.Q.Name)
	return []types.Finding{finding(RuleQmodFilename, types.SeverityError, ctx.Rel, 0, msg)}
}

func checkQmodMain(ctx *QmodContext) []types.Finding {
	if ctx.Q.HasMain {
		return nil
	}
	return []types.Finding{finding(RuleQmodMain, types.SeverityError, ctx.Rel, 0, "no qfunc main declaration")}
}

func checkQmodBalanced(ctx *QmodContext) []types.Finding {
	line, msg := qmod.Imbalance(ctx.Q.Source)
	if line == 0 {
		return nil
	}
	return []types.Finding{finding(RuleQmodBalanced, types.SeverityError, ctx.Rel, line, msg)}
}

func checkQmodTrailingWhitespace(ctx *QmodContext) []types.Finding {
	var out []types.Finding
	for _, line := range qmod.TrailingWhitespace(ctx.Q.Source) {
		out = append(out, finding(RuleQmodTrailingWhitespace, types.SeverityError, ctx.Rel, line, "trailing whitespace"))
	}
	return out
}

func checkQmodFinalNewline(ctx *QmodContext) []types.Finding {
	src := ctx.Q.Source
	if src == "" {
		return nil
	}
	if !qmod.EndsWithNewline(src) {
		return []types.Finding{finding(RuleQmodFinalNewline, types.SeverityError, ctx.Rel, 0, "missing final newline")}
	}
	if strings.HasSuffix(src, "\n\n") {
		return []types.Finding{finding(RuleQmodFinalNewline, types.SeverityError, ctx.Rel, 0, "multiple trailing newlines")}
	}
	return nil
}

// checkQmodCompanions validates the synthesis-options and metadata JSON
// files sitting next to the qmod source. Findings are attributed to the
// companion file, not the qmod.
func checkQmodCompanions(ctx *QmodContext) []types.Finding {
	var out []types.Finding
	relDir := ""
	if d := filepath.ToSlash(filepath.Dir(filepath.FromSlash(ctx.Rel))); d != "." {
		relDir = d + "/"
	}

	for _, abs := range qmod.Companions(ctx.Abs) {
		rel := relDir + filepath.Base(abs)
		raw, err := os.ReadFile(abs)
		if err != nil {
			msg := fmt.Sprintf("reading companion: %v", err)
			out = append(out, finding(RuleQmodCompanions, types.SeverityError, rel, 0, msg))
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			msg := fmt.Sprintf("companion is not valid JSON: %v", err)
			out = append(out, finding(RuleQmodCompanions, types.SeverityError, rel, 0, msg))
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			out = append(out, finding(RuleQmodCompanions, types.SeverityError, rel, 0, "companion is not a JSON object"))
		}
	}
	return out
}
