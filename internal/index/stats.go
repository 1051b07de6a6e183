package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"
)

// DomainCount tallies corpus files under one domain root.
type DomainCount struct {
	Domain    string `json:"domain"`
	Notebooks int    `json:"notebooks"`
	Qmods     int    `json:"qmods"`
}

// RunSummary is the header of one recorded lint run.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Checked   int       `json:"checked"`
	Errors    int       `json:"errors"`
	Warnings  int       `json:"warnings"`
}

// HeavyNotebook is a registry entry ranked by timeout.
type HeavyNotebook struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Seconds float64 `json:"seconds"`
}

// Stats is the queryable shape of the cache.
type Stats struct {
	Domains   []DomainCount   `json:"domains"`
	LatestRun *RunSummary     `json:"latest_run,omitempty"`
	Heaviest  []HeavyNotebook `json:"heaviest"`
}

const heaviestLimit = 5

// Stats summarizes the cache: per-domain counts, the latest recorded
// run, and the heaviest registered timeouts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}

	domains := make(map[string]*DomainCount)
	if err := s.countByDomain(ctx, "notebooks", domains, func(dc *DomainCount, n int) { dc.Notebooks = n }); err != nil {
		return nil, err
	}
	if err := s.countByDomain(ctx, "qmods", domains, func(dc *DomainCount, n int) { dc.Qmods = n }); err != nil {
		return nil, err
	}
	for _, dc := range domains {
		out.Domains = append(out.Domains, *dc)
	}
	sort.Slice(out.Domains, func(i, j int) bool { return out.Domains[i].Domain < out.Domains[j].Domain })

	run, err := s.latestRun(ctx)
	if err != nil {
		return nil, err
	}
	out.LatestRun = run

	heaviest, err := s.heaviest(ctx)
	if err != nil {
		return nil, err
	}
	out.Heaviest = heaviest

	return out, nil
}

func (s *Store) countByDomain(ctx context.Context, table string, domains map[string]*DomainCount, set func(*DomainCount, int)) error {
	// table is one of two fixed names, never user input.
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT domain, COUNT(*) FROM %s GROUP BY domain", table))
	if err != nil {
		return fmt.Errorf("counting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var domain string
		var n int
		if err := rows.Scan(&domain, &n); err != nil {
			return fmt.Errorf("scanning %s count: %w", table, err)
		}
		dc, ok := domains[domain]
		if !ok {
			dc = &DomainCount{Domain: domain}
			domains[domain] = dc
		}
		set(dc, n)
	}
	return rows.Err()
}

func (s *Store) latestRun(ctx context.Context) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, checked, errors, warnings
		 FROM runs ORDER BY started_at DESC LIMIT 1`)

	var run RunSummary
	var startedAt string
	err := row.Scan(&run.RunID, &startedAt, &run.Checked, &run.Errors, &run.Warnings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest run: %w", err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}
	return &run, nil
}

func (s *Store) heaviest(ctx context.Context) ([]HeavyNotebook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, path, timeout_seconds FROM notebooks
		 WHERE timeout_seconds IS NOT NULL
		 ORDER BY timeout_seconds DESC, name LIMIT ?`, heaviestLimit)
	if err != nil {
		return nil, fmt.Errorf("ranking timeouts: %w", err)
	}
	defer rows.Close()

	var out []HeavyNotebook
	for rows.Next() {
		var h HeavyNotebook
		if err := rows.Scan(&h.Name, &h.Path, &h.Seconds); err != nil {
			return nil, fmt.Errorf("scanning timeout rank: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// WriteStats renders stats as tables for the stats subcommand.
func WriteStats(w io.Writer, st *Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tNOTEBOOKS\tQMODS")
	fmt.Fprintln(tw, "------\t---------\t-----")
	for _, d := range st.Domains {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", d.Domain, d.Notebooks, d.Qmods)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if st.LatestRun != nil {
		r := st.LatestRun
		fmt.Fprintf(w, "\nLatest lint run %s (%s): %d files, %d errors, %d warnings.\n",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.Checked, r.Errors, r.Warnings)
	} else {
		fmt.Fprintln(w, "\nNo recorded lint runs.")
	}

	if len(st.Heaviest) > 0 {
		fmt.Fprintln(w, "\nHeaviest timeouts:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, h := range st.Heaviest {
			fmt.Fprintf(tw, "  %s\t%.0fs\t%s\n", h.Name, h.Seconds, h.Path)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
