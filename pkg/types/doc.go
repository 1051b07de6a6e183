// Package types defines the entities shared across the librarian tool:
// lint findings and reports, the parsed notebook and qmod models, the
// library configuration, and the standard error values.
// See docs/ARCHITECTURE.md § Corpus Model.
package types
