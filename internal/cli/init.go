// The init command writes the starter configuration file.
package cli

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/paths"
)

// defaultConfigYAML is the commented configuration written by
// librarian init. The values restate the built-in defaults.
const defaultConfigYAML = `# librarian configuration.
# Relative paths are resolved against the library root (this directory).

# Corpus directories scanned for notebooks and qmod sources.
roots:
  - algorithms
  - applications
  - community
  - functions
  - tutorials

# Directory names skipped during corpus walks.
exclude:
  - .git
  - .ipynb_checkpoints
  - .librarian-cache

# Execution-timeout registry read by the generated notebook tests.
timeouts_file: tests/resources/timeouts.yaml

# Seconds assigned to newly registered notebooks.
default_timeout_seconds: 360

# nb/size warns above this many bytes.
max_notebook_bytes: 2097152

# Rule ids to skip, for example [nb/size].
disabled_rules: []

# Disposable lint cache location.
cache_dir: .librarian-cache

# Repository the celebrate command comments on.
github:
  owner: classiq
  repo: classiq-library
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter .librarian.yaml into the library root",
		Long: `Init writes a commented .librarian.yaml with the default settings
into the library root. An existing file is left unchanged.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path := paths.ConfigFile(env.Root)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists; left unchanged.\n", path)
		return nil
	} else if !os.IsNotExist(err) {
		return sysErr(fmt.Errorf("stat config file: %w", err))
	}

	if err := renameio.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return sysErr(fmt.Errorf("writing config file: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s.\n", path)
	return nil
}
