package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File Is Empty", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFile))
		require.NoError(t, err)
		assert.Equal(t, Config{}, cfg)
	})

	t.Run("Full File", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte(`
backend: sqlite
path: data
key: work.notes
autosave: 5s
watch: true
ignore: ["*.bak"]
log:
  level: debug
  format: json
  file: logs/quire.log
  max_size_mb: 5
  max_backups: 2
`), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Backend)
		assert.Equal(t, filepath.Join(dir, "data"), cfg.Path)
		assert.Equal(t, "work.notes", cfg.Key)
		require.NotNil(t, cfg.Watch)
		assert.True(t, *cfg.Watch)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, filepath.Join(dir, "logs", "quire.log"), cfg.Log.File)
		assert.Equal(t, 5, cfg.Log.MaxSizeMB)

		d, err := cfg.AutosaveInterval()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, d)

		o := applyOptions(cfg.Options())
		assert.Equal(t, BackendSQLite, o.backend)
		assert.Equal(t, "work.notes", o.key)
		assert.Equal(t, 5*time.Second, o.autosave)
		assert.True(t, o.watch)
		assert.Equal(t, []string{"*.bak"}, o.ignore)
	})

	t.Run("Flags Override File", func(t *testing.T) {
		cfg := Config{Backend: "sqlite", Key: "from-file"}
		opts := append(cfg.Options(), WithBackend(BackendMemory), WithKey("from-flag"))

		o := applyOptions(opts)
		assert.Equal(t, BackendMemory, o.backend)
		assert.Equal(t, "from-flag", o.key)
	})

	t.Run("Invalid Autosave", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte("autosave: soon\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte("backend: [\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
