package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/srulre/classiq-library/internal/timeouts"
	"github.com/srulre/classiq-library/pkg/types"
)

func intp(n int) *int { return &n }

func codeCell(source string, count *int) types.Cell {
	return types.Cell{Type: types.CellTypeCode, Source: types.MultilineText(source), ExecutionCount: count}
}

func markdownCell(source string) types.Cell {
	return types.Cell{Type: types.CellTypeMarkdown, Source: types.MultilineText(source)}
}

func nbContext(nb *types.Notebook) *NotebookContext {
	if nb.Name == "" {
		nb.Name = "sample"
	}
	return &NotebookContext{
		Rel:   "tutorials/sample/sample.ipynb",
		Abs:   "/nonexistent/sample.ipynb",
		NB:    nb,
		Names: map[string][]string{nb.Name: {"tutorials/sample/sample.ipynb"}},
		Cfg:   types.DefaultConfig(),
	}
}

func TestCheckNBFormat(t *testing.T) {
	ok := nbContext(&types.Notebook{NBFormat: 4, NBFormatMinor: 5})
	if fs := checkNBFormat(ok); fs != nil {
		t.Errorf("nbformat 4 flagged: %v", fs)
	}

	old := nbContext(&types.Notebook{NBFormat: 3})
	fs := checkNBFormat(old)
	if len(fs) != 1 || fs[0].Rule != RuleNBFormat || fs[0].Severity != types.SeverityError {
		t.Errorf("nbformat 3 findings = %v", fs)
	}
}

func TestCheckNBFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"grover_search", true},
		{"3_sat_grover", true},
		{"q2", true},
		{"GroverSearch", false},
		{"grover-search", false},
		{"grover search", false},
	}
	for _, tt := range tests {
		ctx := nbContext(&types.Notebook{NBFormat: 4, Name: tt.name})
		fs := checkNBFilename(ctx)
		if tt.ok && fs != nil {
			t.Errorf("%q flagged: %v", tt.name, fs)
		}
		if !tt.ok && len(fs) != 1 {
			t.Errorf("%q not flagged", tt.name)
		}
	}
}

func TestCheckNBUnique(t *testing.T) {
	ctx := nbContext(&types.Notebook{NBFormat: 4, Name: "grover"})
	ctx.Rel = "algorithms/grover/grover.ipynb"
	ctx.Names = map[string][]string{
		"grover": {"algorithms/grover/grover.ipynb", "community/grover/grover.ipynb"},
	}

	fs := checkNBUnique(ctx)
	want := []types.Finding{{
		Rule:     RuleNBUnique,
		Severity: types.SeverityError,
		Path:     "algorithms/grover/grover.ipynb",
		Message:  `base name "grover" also used by community/grover/grover.ipynb`,
	}}
	if diff := cmp.Diff(want, fs); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}

	ctx.Names = map[string][]string{"grover": {ctx.Rel}}
	if fs := checkNBUnique(ctx); fs != nil {
		t.Errorf("unique name flagged: %v", fs)
	}
}

func TestCheckNBKernel(t *testing.T) {
	missing := nbContext(&types.Notebook{NBFormat: 4})
	if fs := checkNBKernel(missing); len(fs) != 1 || fs[0].Message != "kernelspec missing" {
		t.Errorf("missing kernelspec findings = %v", fs)
	}

	wrong := nbContext(&types.Notebook{
		NBFormat: 4,
		Metadata: types.NotebookMetadata{Kernelspec: types.Kernelspec{Name: "julia-1.9"}},
	})
	if fs := checkNBKernel(wrong); len(fs) != 1 {
		t.Errorf("non-python kernel findings = %v", fs)
	}

	ok := nbContext(&types.Notebook{
		NBFormat: 4,
		Metadata: types.NotebookMetadata{Kernelspec: types.Kernelspec{Name: "python3"}},
	})
	if fs := checkNBKernel(ok); fs != nil {
		t.Errorf("python3 kernel flagged: %v", fs)
	}
}

func TestCheckNBEmptyCell(t *testing.T) {
	ctx := nbContext(&types.Notebook{
		NBFormat: 4,
		Cells: []types.Cell{
			markdownCell(""), // empty markdown is fine
			codeCell("print(1)\n", intp(1)),
			codeCell("   \n", nil),
			codeCell("", nil),
		},
	})
	fs := checkNBEmptyCell(ctx)
	if len(fs) != 2 {
		t.Fatalf("findings = %v, want 2", fs)
	}
	if fs[0].Line != 3 || fs[1].Line != 4 {
		t.Errorf("cell ordinals = %d, %d, want 3, 4", fs[0].Line, fs[1].Line)
	}
}

func TestCheckNBExecutionOrder(t *testing.T) {
	tests := []struct {
		name     string
		cells    []types.Cell
		wantLine int
	}{
		{
			name:     "in order",
			cells:    []types.Cell{codeCell("a", intp(1)), markdownCell("x"), codeCell("b", intp(2))},
			wantLine: 0,
		},
		{
			name:     "unexecuted notebook",
			cells:    []types.Cell{codeCell("a", nil), codeCell("b", nil)},
			wantLine: 0,
		},
		{
			name:     "gap",
			cells:    []types.Cell{codeCell("a", intp(1)), codeCell("b", intp(3))},
			wantLine: 2,
		},
		{
			name:     "out of order",
			cells:    []types.Cell{codeCell("a", intp(2)), codeCell("b", intp(1))},
			wantLine: 1,
		},
		{
			name:     "partially executed",
			cells:    []types.Cell{codeCell("a", intp(1)), codeCell("b", nil)},
			wantLine: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := nbContext(&types.Notebook{NBFormat: 4, Cells: tt.cells})
			fs := checkNBExecutionOrder(ctx)
			if tt.wantLine == 0 {
				if fs != nil {
					t.Errorf("findings = %v, want none", fs)
				}
				return
			}
			if len(fs) != 1 || fs[0].Line != tt.wantLine {
				t.Errorf("findings = %v, want one at cell %d", fs, tt.wantLine)
			}
			if len(fs) == 1 && fs[0].Severity != types.SeverityWarning {
				t.Errorf("severity = %v, want warning", fs[0].Severity)
			}
		})
	}
}

func TestCheckNBLinks(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "figure.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	nb := &types.Notebook{
		NBFormat: 4,
		Cells: []types.Cell{
			markdownCell("See [the figure](figure.png) and [docs](https://docs.classiq.io)."),
			markdownCell("Also ![img](figure.png#zoom) and [anchor](#setup)."),
			markdownCell("But [missing](other/readme.md) is gone."),
		},
	}
	ctx := nbContext(nb)
	ctx.Abs = filepath.Join(dir, "sample.ipynb")

	fs := checkNBLinks(ctx)
	if len(fs) != 1 {
		t.Fatalf("findings = %v, want 1", fs)
	}
	if fs[0].Line != 3 {
		t.Errorf("cell ordinal = %d, want 3", fs[0].Line)
	}
}

func TestCheckNBTimeout(t *testing.T) {
	reg := timeouts.New("timeouts.yaml")
	reg.Set("registered", 360)
	reg.Set("broken", 0)

	registered := nbContext(&types.Notebook{NBFormat: 4, Name: "registered"})
	registered.Registry = reg
	if fs := checkNBTimeout(registered); fs != nil {
		t.Errorf("registered notebook flagged: %v", fs)
	}

	missing := nbContext(&types.Notebook{NBFormat: 4, Name: "unregistered"})
	missing.Registry = reg
	if fs := checkNBTimeout(missing); len(fs) != 1 {
		t.Errorf("unregistered notebook findings = %v", fs)
	}

	invalid := nbContext(&types.Notebook{NBFormat: 4, Name: "broken"})
	invalid.Registry = reg
	if fs := checkNBTimeout(invalid); len(fs) != 1 {
		t.Errorf("non-positive timeout findings = %v", fs)
	}

	noReg := nbContext(&types.Notebook{NBFormat: 4, Name: "registered"})
	if fs := checkNBTimeout(noReg); fs != nil {
		t.Errorf("nil registry produced findings: %v", fs)
	}
}

func TestCheckNBSize(t *testing.T) {
	ctx := nbContext(&types.Notebook{NBFormat: 4})
	ctx.Size = 100
	ctx.Cfg.MaxNotebookBytes = 50

	fs := checkNBSize(ctx)
	if len(fs) != 1 || fs[0].Severity != types.SeverityWarning {
		t.Errorf("oversized findings = %v", fs)
	}

	ctx.Size = 50
	if fs := checkNBSize(ctx); fs != nil {
		t.Errorf("at-budget notebook flagged: %v", fs)
	}

	ctx.Cfg.MaxNotebookBytes = 0
	ctx.Size = 1 << 30
	if fs := checkNBSize(ctx); fs != nil {
		t.Errorf("disabled budget flagged: %v", fs)
	}
}
