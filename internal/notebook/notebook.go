// Package notebook parses Jupyter notebooks into the corpus model.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/srulre/classiq-library/pkg/types"
)

// Load reads and parses the notebook at path. The returned notebook
// carries the given path verbatim and its base name without extension.
func Load(path string) (*types.Notebook, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notebook: %w", err)
	}
	nb, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	nb.Path = path
	nb.Name = baseName(path)
	return nb, nil
}

// Parse decodes raw nbformat JSON. Cell sources in both the string and
// the string-list encoding are accepted; see types.MultilineText.
func Parse(raw []byte) (*types.Notebook, error) {
	var nb types.Notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedNotebook, err)
	}
	return &nb, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
