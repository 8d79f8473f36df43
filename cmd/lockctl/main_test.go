package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv deja la variable ausente durante el test y la restaura al final.
func unsetenv(t *testing.T, k string) {
	t.Helper()
	t.Setenv(k, "")
	require.NoError(t, os.Unsetenv(k))
}

func TestLoadEnv_ReadsFlagsFromDotEnv(t *testing.T) {
	unsetenv(t, "LOCK_CONFIG")
	unsetenv(t, "LOCK_OUT")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOCK_CONFIG=/etc/lock.yaml\nLOCK_OUT=json\n"), 0o600))

	a := &app{EnvFile: envFile, OutFormat: "text"}
	a.loadEnv(func(string) bool { return false })

	assert.Equal(t, "/etc/lock.yaml", a.ConfigPath)
	assert.Equal(t, "json", a.OutFormat)
}

func TestLoadEnv_ExplicitFlagsWin(t *testing.T) {
	unsetenv(t, "LOCK_CONFIG")
	unsetenv(t, "LOCK_OUT")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOCK_CONFIG=/etc/lock.yaml\nLOCK_OUT=json\n"), 0o600))

	a := &app{EnvFile: envFile, ConfigPath: "local.yaml", OutFormat: "text"}
	a.loadEnv(func(name string) bool { return name == "config" || name == "out" })

	assert.Equal(t, "local.yaml", a.ConfigPath)
	assert.Equal(t, "text", a.OutFormat)
}

func TestLoadEnv_MissingFileKeepsDefaults(t *testing.T) {
	unsetenv(t, "LOCK_CONFIG")
	unsetenv(t, "LOCK_OUT")
	a := &app{EnvFile: filepath.Join(t.TempDir(), "nope.env"), OutFormat: "text"}
	a.loadEnv(func(string) bool { return false })
	assert.Empty(t, a.ConfigPath)
	assert.Equal(t, "text", a.OutFormat)
}
