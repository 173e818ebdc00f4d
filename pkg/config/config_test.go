package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Empty(t, config.Input.Path)
	assert.Equal(t, 64<<20, config.Input.MaxRecordSize)
	assert.Zero(t, config.Input.BufferSize)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "./pff-export", config.Export.Dir)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero max record size", func(c *Config) { c.Input.MaxRecordSize = 0 }},
		{"negative max payload size", func(c *Config) { c.Input.MaxPayloadSize = -1 }},
		{"negative buffer size", func(c *Config) { c.Input.BufferSize = -1 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		expectedConfig := &Config{
			Input: Input{
				Path:          "/data/xe1t/run_",
				MaxRecordSize: 1 << 20,
				BufferSize:    65536,
			},
			Logging: Logging{
				Level: "debug",
			},
			Export: Export{
				Dir: "/scratch/export",
			},
		}

		err := SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "partial.yaml")
		err := os.WriteFile(configPath, []byte("input:\n  path: /data/run.pff\n"), 0600)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "/data/run.pff", loadedConfig.Input.Path)
		assert.Equal(t, DefaultConfig().Input.MaxRecordSize, loadedConfig.Input.MaxRecordSize)
		assert.Equal(t, "info", loadedConfig.Logging.Level)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		err := os.WriteFile(configPath, []byte("logging:\n  level: shout\n"), 0600)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()

	err := SaveConfig(config, configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "pff")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	err := os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}

func TestConfigYAMLKeys(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))

	assert.Contains(t, raw["input"], "max_record_size")
	assert.Contains(t, raw["input"], "buffer_size")
	assert.Contains(t, raw["logging"], "level")
	assert.Contains(t, raw["export"], "dir")
}
