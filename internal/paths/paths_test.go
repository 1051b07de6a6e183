package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMarker(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("roots: [algorithms]\n"), 0o644))
}

func TestFindRoot(t *testing.T) {
	t.Run("marker in start dir", func(t *testing.T) {
		root := t.TempDir()
		writeMarker(t, root)

		got, err := FindRoot(root)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("marker in ancestor", func(t *testing.T) {
		root := t.TempDir()
		writeMarker(t, root)
		nested := filepath.Join(root, "algorithms", "qpe")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		got, err := FindRoot(nested)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("no marker anywhere returns start dir", func(t *testing.T) {
		dir := t.TempDir()

		got, err := FindRoot(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("directory named like the marker is ignored", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ConfigFileName), 0o755))

		got, err := FindRoot(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{
			name:   "flag wins over env",
			flag:   "/explicit/root",
			envVal: "/env/root",
			want:   "/explicit/root",
		},
		{
			name:   "env wins when flag empty",
			flag:   "",
			envVal: "/env/root",
			want:   "/env/root",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRoot, tt.envVal)
			got, err := ResolveRoot(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative flag becomes absolute", func(t *testing.T) {
		t.Setenv(EnvRoot, "")
		got, err := ResolveRoot("relative/root")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestResolveCacheDir(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name      string
		flag      string
		configVal string
		envVal    string
		want      string
	}{
		{
			name:      "flag wins over all",
			flag:      "/flag/cache",
			configVal: "/config/cache",
			envVal:    "/env/cache",
			want:      "/flag/cache",
		},
		{
			name:      "config value wins over env",
			flag:      "",
			configVal: "/config/cache",
			envVal:    "/env/cache",
			want:      "/config/cache",
		},
		{
			name:      "relative config value anchored at root",
			flag:      "",
			configVal: "cache",
			envVal:    "/env/cache",
			want:      filepath.Join(root, "cache"),
		},
		{
			name:      "env wins when flag and config empty",
			flag:      "",
			configVal: "",
			envVal:    "/env/cache",
			want:      "/env/cache",
		},
		{
			name:      "root-relative default when all empty",
			flag:      "",
			configVal: "",
			envVal:    "",
			want:      filepath.Join(root, DefaultCacheDirName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvCacheDir, tt.envVal)
			got, err := ResolveCacheDir(root, tt.flag, tt.configVal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/lib", ConfigFileName), ConfigFile("/lib"))
}
