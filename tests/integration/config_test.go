// Integration tests for configuration loading, root resolution, and
// the flag > env > file > default precedence chain, exercised through
// the binary with controlled environments and working directories.
package integration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_FileOverridesDefault(t *testing.T) {
	lib := NewBareLibrary(t)
	lib.WriteFile(".librarian.yaml", "roots:\n  - algorithms\ndefault_timeout_seconds: 42\n")
	lib.WriteNotebook("algorithms/custom_default.ipynb")

	res := lib.Run("timeouts", "sync")
	require.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "custom_default: 42\n", lib.ReadFile("tests/resources/timeouts.yaml"))
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	lib := NewLibrary(t)
	lib.WriteNotebook("algorithms/env_nb.ipynb")

	// The file says 360; the environment wins.
	res := lib.RunWith(
		[]string{"LIBRARIAN_DEFAULT_TIMEOUT_SECONDS=100"},
		"--root", lib.Root, "timeouts", "sync",
	)
	require.Equal(t, 1, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "env_nb: 100\n", lib.ReadFile("tests/resources/timeouts.yaml"))
}

func TestConfig_MarkerDiscovery(t *testing.T) {
	lib := NewLibrary(t)
	lib.WriteNotebook("algorithms/grover/marker_nb.ipynb")
	lib.WriteRegistry(registryLine("marker_nb", 360))

	// No --root: the binary walks up from a nested CWD to the marker.
	res := lib.RunIn(filepath.Join(lib.Root, "algorithms", "grover"), nil, "timeouts", "check")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "Registry in sync: 1 entries.\n", res.Stdout)
}

func TestConfig_RootEnv(t *testing.T) {
	lib := NewLibrary(t)
	lib.WriteNotebook("algorithms/env_root_nb.ipynb")
	lib.WriteRegistry(registryLine("env_root_nb", 360))

	// CWD is unrelated; LIBRARIAN_ROOT points at the library.
	res := lib.RunIn(t.TempDir(), []string{"LIBRARIAN_ROOT=" + lib.Root}, "timeouts", "check")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "Registry in sync: 1 entries.\n", res.Stdout)
}

func TestConfig_ConfigDirFlag(t *testing.T) {
	lib := NewBareLibrary(t)
	lib.WriteNotebook("algorithms/elsewhere_nb.ipynb")

	cfg := NewBareLibrary(t)
	cfg.WriteFile(".librarian.yaml", "roots:\n  - algorithms\ndefault_timeout_seconds: 77\n")

	res := lib.Run("--config-dir", cfg.Root, "timeouts", "sync")
	require.Equal(t, 1, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "elsewhere_nb: 77\n", lib.ReadFile("tests/resources/timeouts.yaml"))
}

func TestConfig_InvalidYAML(t *testing.T) {
	lib := NewBareLibrary(t)
	lib.WriteFile(".librarian.yaml", "roots: [unclosed\n")

	res := lib.Run("lint")
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "reading .librarian.yaml")
}

func TestConfig_InvalidValues(t *testing.T) {
	t.Run("non-positive timeout", func(t *testing.T) {
		lib := NewBareLibrary(t)
		lib.WriteFile(".librarian.yaml", "default_timeout_seconds: -5\n")

		res := lib.Run("lint")
		assert.Equal(t, 1, res.ExitCode)
		assert.Contains(t, res.Stderr, "invalid configuration")
		assert.Contains(t, res.Stderr, "default timeout must be positive")
	})

	t.Run("empty roots", func(t *testing.T) {
		lib := NewBareLibrary(t)
		lib.WriteFile(".librarian.yaml", "roots: []\n")

		res := lib.Run("lint")
		assert.Equal(t, 1, res.ExitCode)
		assert.Contains(t, res.Stderr, "library roots must not be empty")
	})
}

func TestInit(t *testing.T) {
	lib := NewBareLibrary(t)

	res := lib.Run("init")
	require.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Contains(t, res.Stdout, "Wrote ")
	assert.Contains(t, res.Stdout, ".librarian.yaml")

	content := lib.ReadFile(".librarian.yaml")
	assert.True(t, strings.HasPrefix(content, "# librarian configuration."), "template should open with its header comment")
	assert.Contains(t, content, "default_timeout_seconds: 360")

	// The generated file must load cleanly.
	res = lib.Run("lint")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Equal(t, "No findings. Checked 0 files.\n", res.Stdout)

	// A second init leaves the file alone.
	res = lib.Run("init")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "already exists; left unchanged.")
	assert.Equal(t, content, lib.ReadFile(".librarian.yaml"))
}

func TestVersion(t *testing.T) {
	lib := NewBareLibrary(t)

	// Version works outside any library.
	res := lib.MustRun("version")
	assert.Contains(t, res.Stdout, "librarian v")
	assert.Contains(t, res.Stdout, "module: github.com/srulre/classiq-library")
}

func TestLogging_DebugLevel(t *testing.T) {
	lib := NewLibrary(t)
	lib.WriteNotebook("algorithms/logged_nb.ipynb")
	lib.WriteRegistry(registryLine("logged_nb", 360))

	res := lib.Run("--log-level", "debug", "lint")
	assert.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Contains(t, res.Stderr, `"event":"lint_done"`)
	assert.Contains(t, res.Stderr, `"run_id":"`)
	assert.Contains(t, res.Stderr, `"service":"librarian"`)
	assert.NotContains(t, res.Stdout, `"event"`, "logs stay off stdout")
}

func TestLogging_RecordCorrelation(t *testing.T) {
	lib := NewLibrary(t)
	lib.WriteNotebook("algorithms/corr_nb.ipynb")
	lib.WriteRegistry(registryLine("corr_nb", 360))

	res := lib.Run("lint", "--record")
	require.Equal(t, 0, res.ExitCode, "stderr: %s", res.Stderr)
	assert.Contains(t, res.Stderr, `"event":"run_recorded"`)

	// The logged run id matches the recorded row.
	runID := extractJSONField(t, res.Stderr, "run_id")
	out := ParseJSON[statsShape](t, lib.MustRun("--json", "stats").Stdout)
	require.NotNil(t, out.LatestRun)
	assert.Equal(t, runID, out.LatestRun.RunID)
}

// extractJSONField pulls the first string value for key out of a log
// stream of JSON lines.
func extractJSONField(t *testing.T, stream, key string) string {
	t.Helper()
	marker := `"` + key + `":"`
	i := strings.Index(stream, marker)
	require.GreaterOrEqual(t, i, 0, "field %s not found in %q", key, stream)
	rest := stream[i+len(marker):]
	j := strings.Index(rest, `"`)
	require.GreaterOrEqual(t, j, 0)
	return rest[:j]
}
