package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "", cfg.FSL.Dir)
	assert.Equal(t, "flirt", cfg.FSL.Tool)
	assert.Equal(t, "flirtsch/ident.mat", cfg.FSL.Identity)
	assert.Equal(t, "sinc", cfg.FSL.Interp)
	assert.Equal(t, "hanning", cfg.FSL.SincWindow)
	assert.True(t, cfg.Exit.Propagate)
	assert.Equal(t, 0, cfg.Exit.UsageStatus)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Preview.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestFSLPaths(t *testing.T) {
	f := DefaultConfig().FSL
	f.Dir = "/usr/local/fsl"

	assert.Equal(t, "/usr/local/fsl/bin/flirt", f.ToolPath())
	assert.Equal(t, "/usr/local/fsl/etc/flirtsch/ident.mat", f.IdentityPath())

	// Unset root keeps the literal layout
	f.Dir = ""
	assert.Equal(t, "/bin/flirt", f.ToolPath())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isoresample.yaml")
	data := []byte("fsl:\n  dir: /opt/fsl\nexit:\n  propagate: false\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/fsl", cfg.FSL.Dir)
	assert.Equal(t, "flirt", cfg.FSL.Tool, "unset fields keep defaults")
	assert.False(t, cfg.Exit.Propagate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fsl: [unclosed"), 0644))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "error parsing config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("fsl:\n  tool: \"\"\nlogging:\n  format: xml\n"), 0644))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.ErrorContains(t, err, "fsl.tool")
		assert.ErrorContains(t, err, "logging.format")
	})
}

func TestValidateUsageStatusRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exit.UsageStatus = 300
	assert.ErrorContains(t, cfg.Validate(), "exit.usageStatus")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
