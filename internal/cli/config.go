// Config loading for the librarian CLI.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/srulre/classiq-library/internal/paths"
	"github.com/srulre/classiq-library/pkg/types"
)

const (
	configFileName = ".librarian"
	configFileType = "yaml"
	envPrefix      = "LIBRARIAN"
)

// Config keys in .librarian.yaml.
const (
	cfgKeyRoots          = "roots"
	cfgKeyExclude        = "exclude"
	cfgKeyTimeoutsFile   = "timeouts_file"
	cfgKeyDefaultTimeout = "default_timeout_seconds"
	cfgKeyMaxNBBytes     = "max_notebook_bytes"
	cfgKeyDisabledRules  = "disabled_rules"
	cfgKeyCacheDir       = "cache_dir"
	cfgKeyGitHubOwner    = "github.owner"
	cfgKeyGitHubRepo     = "github.repo"
	cfgKeyGitHubAPIBase  = "github.api_base_url"
)

// loadConfig reads .librarian.yaml from the config directory (default:
// the library root) using Viper. A missing file is not an error; every
// key has a default, and LIBRARIAN_* environment variables override
// the file.
func loadConfig(root string) (types.Config, error) {
	configDir := flags.configDir
	if configDir == "" {
		configDir = root
	}

	def := types.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyRoots, def.Roots)
	v.SetDefault(cfgKeyExclude, def.Exclude)
	v.SetDefault(cfgKeyTimeoutsFile, def.RegistryPath)
	v.SetDefault(cfgKeyDefaultTimeout, def.DefaultTimeout)
	v.SetDefault(cfgKeyMaxNBBytes, def.MaxNotebookBytes)
	v.SetDefault(cfgKeyDisabledRules, def.DisabledRules)
	v.SetDefault(cfgKeyCacheDir, def.CacheDir)
	v.SetDefault(cfgKeyGitHubOwner, def.GitHub.Owner)
	v.SetDefault(cfgKeyGitHubRepo, def.GitHub.Repo)
	v.SetDefault(cfgKeyGitHubAPIBase, def.GitHub.APIBaseURL)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("reading %s: %w", paths.ConfigFileName, err)
		}
		// Missing config file: defaults and environment apply.
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding %s: %w", paths.ConfigFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
