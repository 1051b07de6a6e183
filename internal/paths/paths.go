// Package paths resolves the library root, configuration file, and cache
// directory locations.
// See docs/ARCHITECTURE.md § CLI.
package paths

import (
	"os"
	"path/filepath"
)

// Well-known names under the library root.
const (
	ConfigFileName      = ".librarian.yaml"
	DefaultCacheDirName = ".librarian-cache"
)

// Environment variable names for overrides.
const (
	EnvRoot     = "LIBRARIAN_ROOT"
	EnvCacheDir = "LIBRARIAN_CACHE_DIR"
)

// FindRoot walks upward from startDir looking for a .librarian.yaml
// marker file. It returns the directory containing the marker, or
// startDir when no marker exists anywhere above it.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for cur := dir; ; {
		marker := filepath.Join(cur, ConfigFileName)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, nil
		}
		cur = parent
	}
}

// ResolveRoot returns the library root following the precedence chain:
// flag > LIBRARIAN_ROOT env > upward marker search from the CWD.
func ResolveRoot(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvRoot); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRoot(cwd)
}

// ConfigFile returns the configuration file path for a library root.
func ConfigFile(root string) string {
	return filepath.Join(root, ConfigFileName)
}

// ResolveCacheDir returns the cache directory following the precedence
// chain: flag > config value > LIBRARIAN_CACHE_DIR env > root-relative
// default. Relative config values are anchored at the library root.
func ResolveCacheDir(root, flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		if filepath.IsAbs(configValue) {
			return configValue, nil
		}
		return filepath.Join(root, configValue), nil
	}
	if env := os.Getenv(EnvCacheDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(root, DefaultCacheDirName), nil
}
