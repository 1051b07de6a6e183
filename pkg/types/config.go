package types

// GitHubConfig identifies the repository the celebration job comments on.
// APIBaseURL is overridable so tests can point the client at a local server.
type GitHubConfig struct {
	Owner      string `mapstructure:"owner" yaml:"owner"`
	Repo       string `mapstructure:"repo" yaml:"repo"`
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`
}

// Config holds the library-wide settings loaded from .librarian.yaml.
type Config struct {
	// Roots are the corpus directories scanned for notebooks and qmod
	// sources, relative to the library root.
	Roots []string `mapstructure:"roots" yaml:"roots"`

	// Exclude lists directory names skipped during corpus walks.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`

	// RegistryPath is the timeout registry file, relative to the library
	// root.
	RegistryPath string `mapstructure:"timeouts_file" yaml:"timeouts_file"`

	// DefaultTimeout is the execution timeout in seconds assigned to
	// newly registered notebooks.
	DefaultTimeout float64 `mapstructure:"default_timeout_seconds" yaml:"default_timeout_seconds"`

	// MaxNotebookBytes is the size budget above which nb/size warns.
	MaxNotebookBytes int64 `mapstructure:"max_notebook_bytes" yaml:"max_notebook_bytes"`

	// DisabledRules lists rule ids skipped by lint runs.
	DisabledRules []string `mapstructure:"disabled_rules" yaml:"disabled_rules"`

	// CacheDir holds the disposable index database, relative to the
	// library root unless absolute.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
}

// Defaults for a fresh library checkout.
const (
	DefaultRegistryPath     = "tests/resources/timeouts.yaml"
	DefaultTimeoutSeconds   = 360.0
	DefaultMaxNotebookBytes = 2 << 20 // 2 MiB
	DefaultCacheDirName     = ".librarian-cache"
	DefaultGitHubAPIBaseURL = "https://api.github.com"
)

// DefaultRoots are the corpus directories of a standard library layout.
var DefaultRoots = []string{"algorithms", "applications", "community", "functions", "tutorials"}

// DefaultExcludes are directory names never walked.
var DefaultExcludes = []string{".git", ".ipynb_checkpoints", DefaultCacheDirName}

// DefaultConfig returns the configuration used when no .librarian.yaml
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Roots:            append([]string(nil), DefaultRoots...),
		Exclude:          append([]string(nil), DefaultExcludes...),
		RegistryPath:     DefaultRegistryPath,
		DefaultTimeout:   DefaultTimeoutSeconds,
		MaxNotebookBytes: DefaultMaxNotebookBytes,
		CacheDir:         DefaultCacheDirName,
		GitHub:           GitHubConfig{APIBaseURL: DefaultGitHubAPIBaseURL},
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if len(c.Roots) == 0 {
		return ErrRootsEmpty
	}
	if c.RegistryPath == "" {
		return ErrRegistryPathEmpty
	}
	if c.DefaultTimeout <= 0 {
		return ErrTimeoutInvalid
	}
	if c.MaxNotebookBytes <= 0 {
		return ErrSizeBudgetInvalid
	}
	return nil
}

// RuleDisabled reports whether the given rule id is disabled.
func (c Config) RuleDisabled(id string) bool {
	for _, r := range c.DisabledRules {
		if r == id {
			return true
		}
	}
	return false
}
