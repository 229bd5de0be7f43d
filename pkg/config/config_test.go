package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brimdata/floyd/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	c, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	c, err = config.Parse([]byte("log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxDepth, c.MaxDepth)
	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floyd.yaml")
	const text = `
prelude:
  - std.floyd
  - shapes.floyd
max_depth: 64
no_color: true
log_file: floyd.log
log_max_backups: 3
`
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	c, err := config.Load(path)
	require.NoError(t, err)
	expected := &config.Config{
		Prelude:       []string{"std.floyd", "shapes.floyd"},
		MaxDepth:      64,
		LogLevel:      config.DefaultLogLevel,
		NoColor:       true,
		LogFile:       "floyd.log",
		LogMaxSize:    config.DefaultLogSize,
		LogMaxBackups: 3,
	}
	assert.Equal(t, expected, c)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		text, msg string
	}{
		{"max_depth: 0", "max_depth must be positive"},
		{"max_depth: -3", "max_depth must be positive"},
		{"log_level: loud", "log_level"},
		{"colour: true", "colour"},
		{"prelude: 3", "cannot unmarshal"},
		{"log_max_size: 0", "log_max_size must be positive"},
		{"log_max_backups: -1", "log_max_backups must not be negative"},
	}
	for _, c := range cases {
		_, err := config.Parse([]byte(c.text))
		require.Error(t, err, "config %q", c.text)
		assert.Contains(t, err.Error(), c.msg, "config %q", c.text)
	}
}
