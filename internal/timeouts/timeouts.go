// Package timeouts manages the execution-timeout registry, a YAML map
// of notebook base name to seconds. The file on disk is the source of
// truth; rewrites are atomic and key-sorted so diffs stay reviewable.
// See docs/ARCHITECTURE.md § Timeout Registry.
package timeouts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/srulre/classiq-library/pkg/types"
)

// Registry holds the decoded timeout entries of one registry file.
type Registry struct {
	Path    string
	entries map[string]float64
}

// New returns an empty registry bound to path.
func New(path string) *Registry {
	return &Registry{Path: path, entries: make(map[string]float64)}
}

// Load reads the registry at path. A missing file yields an empty
// registry: sync will create it on the first write.
func Load(path string) (*Registry, error) {
	r := New(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading timeout registry: %w", err)
	}
	if err := yaml.Unmarshal(raw, &r.entries); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedRegistry, err)
	}
	if r.entries == nil {
		r.entries = make(map[string]float64)
	}
	return r, nil
}

// Get returns the timeout for a notebook base name.
func (r *Registry) Get(name string) (float64, bool) {
	v, ok := r.entries[name]
	return v, ok
}

// Set records a timeout for a notebook base name.
func (r *Registry) Set(name string, seconds float64) {
	r.entries[name] = seconds
}

// Remove drops a notebook's entry.
func (r *Registry) Remove(name string) {
	delete(r.entries, name)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns the registered notebook names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Diff compares the registry against the corpus notebook names and
// returns the names missing from the registry and the entries that no
// longer match any notebook. Both slices are sorted.
func (r *Registry) Diff(names map[string][]string) (missing, stale []string) {
	for name := range names {
		if _, ok := r.entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range r.entries {
		if _, ok := names[name]; !ok {
			stale = append(stale, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(stale)
	return missing, stale
}

// Sync adds a default entry for every corpus notebook missing one and
// removes entries with no matching notebook. It reports what changed;
// running it twice in a row changes nothing the second time.
func (r *Registry) Sync(names map[string][]string, defaultSeconds float64) (added, removed []string) {
	added = r.SyncAdd(names, defaultSeconds)
	removed = r.SyncRemove(names)
	return added, removed
}

// SyncAdd is the insert-only half of Sync, used by the autoadd hook.
func (r *Registry) SyncAdd(names map[string][]string, defaultSeconds float64) (added []string) {
	added, _ = r.Diff(names)
	for _, name := range added {
		r.entries[name] = defaultSeconds
	}
	return added
}

// SyncRemove is the remove-only half of Sync, used by the cleanup hook.
func (r *Registry) SyncRemove(names map[string][]string) (removed []string) {
	_, removed = r.Diff(names)
	for _, name := range removed {
		delete(r.entries, name)
	}
	return removed
}

// Write rewrites the registry file atomically with keys sorted. The
// parent directory is created if needed.
func (r *Registry) Write() error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range r.Names() {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			secondsNode(r.entries[name]),
		)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding timeout registry: %w", err)
	}
	if len(r.entries) == 0 {
		out = []byte("{}\n")
	}
	if err := renameio.WriteFile(r.Path, out, 0o644); err != nil {
		return fmt.Errorf("writing timeout registry: %w", err)
	}
	return nil
}

// ResolvePath returns the registry file location for a library root,
// anchoring a relative configured path at the root.
func ResolvePath(root string, cfg types.Config) string {
	p := cfg.RegistryPath
	if p == "" {
		p = types.DefaultRegistryPath
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(p))
	}
	return p
}

// ValidateSchema checks raw registry YAML beyond parseability: a
// top-level mapping with string keys and positive numeric seconds.
// It returns one error per violation, sorted by key; an unparseable or
// non-mapping document yields a single ErrMalformedRegistry.
func ValidateSchema(raw []byte) []error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return []error{fmt.Errorf("%w: %v", types.ErrMalformedRegistry, err)}
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		switch v := doc[name].(type) {
		case int:
			if v <= 0 {
				errs = append(errs, fmt.Errorf("entry %q: %w: %d", name, types.ErrTimeoutInvalid, v))
			}
		case float64:
			if v <= 0 {
				errs = append(errs, fmt.Errorf("entry %q: %w: %v", name, types.ErrTimeoutInvalid, v))
			}
		default:
			errs = append(errs, fmt.Errorf("entry %q: %w: value %v is not a number", name, types.ErrMalformedRegistry, v))
		}
	}
	return errs
}

// secondsNode renders whole-second values without a fractional part so
// the common case reads as "360" rather than "360.0".
func secondsNode(v float64) *yaml.Node {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: strconv.FormatFloat(v, 'f', 0, 64),
		}
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!float",
		Value: strconv.FormatFloat(v, 'f', -1, 64),
	}
}
