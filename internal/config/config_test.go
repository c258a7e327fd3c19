package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultFrameBudget, cfg.Scheduler.FrameBudget)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.IdleTimeout)
	assert.Equal(t, time.Millisecond, cfg.Scheduler.YieldThreshold)
	assert.Equal(t, "fiber", cfg.Metrics.Namespace)
	assert.Equal(t, ":7070", cfg.Inspect.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))

	configYAML := `scheduler:
  frameBudget: 8ms
  yieldThreshold: 500us
log:
  level: debug
  format: json
inspect:
  addr: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configYAML), 0o644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, cfg.Scheduler.FrameBudget)
	assert.Equal(t, 500*time.Microsecond, cfg.Scheduler.YieldThreshold)
	assert.Equal(t, DefaultIdleTimeout, cfg.Scheduler.IdleTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, "127.0.0.1:9000", cfg.Inspect.Addr)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFileName), cfg.Path())
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "scheduler:\n  frameBudjet: 8ms\n"},
		{"bad duration", "scheduler:\n  idleTimeout: soon\n"},
		{"negative budget", "scheduler:\n  frameBudget: -1ms\n"},
		{"threshold above budget", "scheduler:\n  frameBudget: 2ms\n  yieldThreshold: 2ms\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
		})
	}
}

func TestLoadFileAddsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	var fe *errors.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Scheduler.FrameBudget = 4 * time.Millisecond
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "frameBudget: 4ms")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, err := FindProjectRoot(nested)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), nil, 0o644))
	root, err := FindProjectRoot(nested)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, Exists(root))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "pass", "p1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	level, err := LogConfig{Level: "DEBUG"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
