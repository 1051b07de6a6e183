// Package corpus discovers the library's notebooks and qmod sources.
// All paths it returns are library-root-relative and slash-separated so
// reports are stable across platforms.
// See docs/ARCHITECTURE.md § Corpus Model.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/srulre/classiq-library/pkg/types"
)

// File extensions the corpus tracks.
const (
	NotebookExt = ".ipynb"
	QmodExt     = ".qmod"
)

// Corpus lists the files of one library scan.
type Corpus struct {
	Root      string
	Notebooks []string
	Qmods     []string
}

// Discover walks the configured corpus roots under root and collects
// notebooks and qmod sources. Roots that do not exist are skipped:
// a fresh checkout may carry only a subset of the standard layout.
func Discover(root string, cfg types.Config) (*Corpus, error) {
	c := &Corpus{Root: root}
	seen := make(map[string]bool)

	for _, sub := range cfg.Roots {
		dir := filepath.Join(root, sub)
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat corpus root %s: %w", sub, err)
		}
		if !info.IsDir() {
			continue
		}
		if err := c.walkDir(dir, cfg, seen); err != nil {
			return nil, err
		}
	}

	c.sort()
	return c, nil
}

// FromPaths builds a corpus from an explicit path list (files or
// directories, absolute or root-relative). Explicitly named files are
// included even when an exclude rule would have skipped their directory;
// directories are walked with the usual exclusions. Unknown extensions
// are ignored.
func FromPaths(root string, cfg types.Config, paths []string) (*Corpus, error) {
	c := &Corpus{Root: root}
	seen := make(map[string]bool)

	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			if err := c.walkDir(abs, cfg, seen); err != nil {
				return nil, err
			}
			continue
		}
		if err := c.add(abs, seen); err != nil {
			return nil, err
		}
	}

	c.sort()
	return c, nil
}

func (c *Corpus) walkDir(dir string, cfg types.Config, seen map[string]bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excluded(d.Name(), cfg.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		return c.add(path, seen)
	})
}

func (c *Corpus) add(abs string, seen map[string]bool) error {
	rel, err := filepath.Rel(c.Root, abs)
	if err != nil {
		return fmt.Errorf("relativize %s: %w", abs, err)
	}
	rel = filepath.ToSlash(rel)
	if seen[rel] {
		return nil
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case NotebookExt:
		c.Notebooks = append(c.Notebooks, rel)
	case QmodExt:
		c.Qmods = append(c.Qmods, rel)
	default:
		return nil
	}
	seen[rel] = true
	return nil
}

func (c *Corpus) sort() {
	sort.Strings(c.Notebooks)
	sort.Strings(c.Qmods)
}

// Abs converts a root-relative corpus path back to a filesystem path.
func (c *Corpus) Abs(rel string) string {
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

// NotebookNames maps each notebook base name (without extension) to the
// corpus paths using it. More than one path under a name is a
// uniqueness violation: the timeout registry and the generated execution
// tests key notebooks by base name.
func (c *Corpus) NotebookNames() map[string][]string {
	names := make(map[string][]string, len(c.Notebooks))
	for _, rel := range c.Notebooks {
		name := BaseName(rel)
		names[name] = append(names[name], rel)
	}
	return names
}

// BaseName strips the directory and extension from a corpus path.
func BaseName(rel string) string {
	base := filepath.Base(filepath.FromSlash(rel))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func excluded(dirName string, excludes []string) bool {
	for _, e := range excludes {
		if dirName == e {
			return true
		}
	}
	return false
}
