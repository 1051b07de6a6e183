package types

import (
	"encoding/json"
	"strings"
)

// Cell types used by the nbformat schema.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
	CellTypeRaw      = "raw"
)

// MultilineText is a notebook text field that the nbformat schema allows
// to be either a single string or a list of line strings. Both forms
// decode to the joined string.
type MultilineText string

// UnmarshalJSON accepts both the string and the list-of-strings encoding.
func (m *MultilineText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MultilineText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = MultilineText(strings.Join(lines, ""))
	return nil
}

// MarshalJSON always emits the single-string form.
func (m MultilineText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

// String returns the joined text.
func (m MultilineText) String() string { return string(m) }

// Kernelspec identifies the kernel a notebook was authored against.
type Kernelspec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// NotebookMetadata holds the notebook-level metadata fields the tool
// inspects. Unknown fields are ignored; a missing kernelspec decodes to
// the zero value.
type NotebookMetadata struct {
	Kernelspec Kernelspec `json:"kernelspec"`
}

// Output is a single execution output of a code cell. Only the fields
// needed by the lint rules are decoded.
type Output struct {
	OutputType string        `json:"output_type"`
	Text       MultilineText `json:"text,omitempty"`
}

// Cell is one notebook cell.
type Cell struct {
	Type           string        `json:"cell_type"`
	Source         MultilineText `json:"source"`
	ExecutionCount *int          `json:"execution_count,omitempty"`
	Outputs        []Output      `json:"outputs,omitempty"`
}

// IsCode reports whether the cell is a code cell.
func (c Cell) IsCode() bool { return c.Type == CellTypeCode }

// IsMarkdown reports whether the cell is a markdown cell.
func (c Cell) IsMarkdown() bool { return c.Type == CellTypeMarkdown }

// Empty reports whether the cell source is blank.
func (c Cell) Empty() bool { return strings.TrimSpace(string(c.Source)) == "" }

// Notebook is a parsed .ipynb file. Path and Name are filled by the
// loader, not by the JSON decoder.
type Notebook struct {
	Path          string           `json:"-"`
	Name          string           `json:"-"` // base name without the .ipynb extension
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
	Metadata      NotebookMetadata `json:"metadata"`
	Cells         []Cell           `json:"cells"`
}

// CodeCells returns the code cells in document order.
func (n *Notebook) CodeCells() []Cell {
	var cells []Cell
	for _, c := range n.Cells {
		if c.IsCode() {
			cells = append(cells, c)
		}
	}
	return cells
}

// MarkdownCells returns the markdown cells in document order.
func (n *Notebook) MarkdownCells() []Cell {
	var cells []Cell
	for _, c := range n.Cells {
		if c.IsMarkdown() {
			cells = append(cells, c)
		}
	}
	return cells
}
