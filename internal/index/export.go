package index

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"

	"github.com/srulre/classiq-library/pkg/types"
)

// WriteFindingsJSONL writes one finding per line to path, atomically:
// the file appears complete or not at all.
func WriteFindingsJSONL(path string, findings []types.Finding) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("creating pending export: %w", err)
	}
	defer pending.Cleanup()

	w := bufio.NewWriter(pending)
	enc := json.NewEncoder(w)
	for _, f := range findings {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding finding for %s: %w", f.Path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing export: %w", err)
	}
	return nil
}
