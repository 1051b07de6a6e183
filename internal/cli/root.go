// Package cli implements the librarian command-line interface: corpus
// linting, timeout-registry upkeep, pre-commit hook dispatch, the
// merged-PR celebration job, and the cache index.
// See docs/ARCHITECTURE.md § CLI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/internal/log"
	"github.com/srulre/classiq-library/internal/paths"
	"github.com/srulre/classiq-library/pkg/librarian"
	"github.com/srulre/classiq-library/pkg/types"
)

// Exit codes: findings and user mistakes exit 1, environment and API
// failures exit 2.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	root      string
	configDir string
	cacheDir  string
	jsonMode  bool
	logLevel  string
}

var flags rootFlags

// environment is the resolved library state, set by the root
// PersistentPreRunE before any subcommand runs.
type environment struct {
	Root     string
	CacheDir string
	Cfg      types.Config
}

var env environment

// NewRootCmd creates the top-level "librarian" command with global
// flags and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "librarian",
		Short: "Librarian keeps the example library consistent",
		Long: `Librarian maintains the conventions of the quantum example library:
it lints notebooks and qmod sources, keeps the execution-timeout
registry in step with the corpus, dispatches the pre-commit hooks,
and posts the merged-PR celebration comment.`,
		Version: librarian.Version,
		// Errors are printed once by Execute with the proper exit code.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&flags.root, "root", "", "library root (default: upward search for .librarian.yaml, then CWD)")
	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "directory holding .librarian.yaml (default: the library root)")
	root.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "cache directory (default: <root>/.librarian-cache)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default info)")

	root.AddCommand(newLintCmd())
	root.AddCommand(newTimeoutsCmd())
	root.AddCommand(newHookCmd())
	root.AddCommand(newHooksCmd())
	root.AddCommand(newCelebrateCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// setup resolves the library root and loads configuration before any
// subcommand runs. The version command works outside a library.
func setup(cmd *cobra.Command, args []string) error {
	log.Configure(log.Config{Level: flags.logLevel})
	if cmd.Name() == "version" {
		return nil
	}

	root, err := paths.ResolveRoot(flags.root)
	if err != nil {
		return fmt.Errorf("resolving library root: %w", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	cacheDir, err := paths.ResolveCacheDir(root, flags.cacheDir, cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache dir: %w", err)
	}

	env = environment{Root: root, CacheDir: cacheDir, Cfg: cfg}
	return nil
}

// Execute runs the root command under a signal-aware context and
// returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return exitSuccess
}

// codedError carries the exit code Execute reports for an error.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// sysErr marks err as an environment or API failure (exit 2).
func sysErr(err error) error {
	return &codedError{code: exitSysError, err: err}
}

// exitCodeFor maps an error to its exit code. Untagged errors are user
// errors: bad flags, bad input files, findings.
func exitCodeFor(err error) int {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitUserError
}
