package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/srulre/classiq-library/pkg/types"
)

// WriteText renders the report as a findings table plus a summary line.
func WriteText(w io.Writer, rep *types.Report) error {
	if len(rep.Findings) == 0 {
		_, err := fmt.Fprintf(w, "No findings. Checked %d files.\n", rep.Checked)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tSEVERITY\tRULE\tMESSAGE")
	fmt.Fprintln(tw, "--------\t--------\t----\t-------")
	for _, f := range rep.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", location(f), f.Severity, f.Rule, f.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nChecked %d files: %d errors, %d warnings.\n",
		rep.Checked, rep.Count(types.SeverityError), rep.Count(types.SeverityWarning))
	return err
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, rep *types.Report) error {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func location(f types.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	}
	return f.Path
}
