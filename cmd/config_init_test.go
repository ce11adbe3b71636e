package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fieldlink/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestConfigInit_WritesStarterConfig(t *testing.T) {
	chdir(t, t.TempDir())

	require.NoError(t, configInitCmd.RunE(configInitCmd, nil))

	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "deal", cfg.Linkage.TagPrefix)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o600))

	configInitForce = false
	assert.Error(t, configInitCmd.RunE(configInitCmd, nil))

	configInitForce = true
	defer func() { configInitForce = false }()
	assert.NoError(t, configInitCmd.RunE(configInitCmd, nil))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"resolve", "reconcile", "revenue", "serve", "config"} {
		assert.True(t, names[want], want)
	}
}
