// SPDX-License-Identifier: Apache-2.0
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Work-Fort/Intake/pkg/config"
)

func setupDirs(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	saved := config.GlobalPaths
	t.Cleanup(func() { config.GlobalPaths = saved })
	config.GlobalPaths = &config.Paths{
		ConfigDir: filepath.Join(tmpDir, "config"),
		StoreDir:  filepath.Join(tmpDir, "store"),
	}
	require.NoError(t, os.MkdirAll(config.GlobalPaths.ConfigDir, 0755))
	t.Chdir(tmpDir)

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.InitViper()
	return tmpDir
}

// reload reads the config files written by earlier commands
func reload(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.InitViper()
	require.NoError(t, config.LoadConfig())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetStoreBackend(t *testing.T) {
	dir := setupDirs(t)

	_, err := run(t, "set", "store.backend", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed in repo config (use one of: nats, redis)")
	assert.NoFileExists(t, filepath.Join(dir, "intake.yaml"))

	_, err = run(t, "set", "store.backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store backend "postgres"`)

	out, err := run(t, "set", "store.backend", "redis")
	require.NoError(t, err)
	assert.Contains(t, out, "Set store.backend = redis")
	assert.Contains(t, out, "./intake.yaml")
	assert.Contains(t, out, "intake config set --global store.redis.url")

	_, err = run(t, "set", "--global", "store.backend", "memory")
	assert.NoError(t, err, "memory is allowed in user config")
}

func TestSetSecret(t *testing.T) {
	dir := setupDirs(t)

	_, err := run(t, "set", "identity.token-secret", "0123456789abcdef")
	require.Error(t, err, "repo config must refuse secrets")
	assert.NoFileExists(t, filepath.Join(dir, "intake.yaml"))

	out, err := run(t, "set", "--global", "identity.token-secret", "0123456789abcdef")
	require.NoError(t, err)
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, strings.Repeat("*", 16))
	assert.Contains(t, out, config.DisplayConfigPath(config.ScopeUser))
}

func TestSetUnknownKeySuggests(t *testing.T) {
	setupDirs(t)

	_, err := run(t, "set", "identity.token", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration key: identity.token")
	assert.Contains(t, err.Error(), "identity.token-ttl")
}

func TestGetShowsValuesAndSources(t *testing.T) {
	setupDirs(t)
	_, err := run(t, "set", "identity.hash-cost", "12")
	require.NoError(t, err)
	reload(t)

	out, err := run(t, "get", "identity.hash-cost", "identity.token-ttl")
	require.NoError(t, err)
	assert.Equal(t, "identity.hash-cost = 12 (from ./intake.yaml)\nidentity.token-ttl = 24h (default)\n", out)

	out, err = run(t, "get", "--value", "identity.hash-cost", "identity.token-ttl")
	require.NoError(t, err)
	assert.Equal(t, "12\n24h\n", out)

	_, err = run(t, "get", "identity.hash-cost", "hash-cost")
	assert.ErrorContains(t, err, "unknown configuration key: hash-cost")
}

func TestListGroupsBySection(t *testing.T) {
	setupDirs(t)
	_, err := run(t, "set", "store.backend", "redis")
	require.NoError(t, err)
	reload(t)

	out, err := run(t, "list", "--plain")
	require.NoError(t, err)
	for _, key := range config.RegistryKeys() {
		assert.Contains(t, out, key+" = ", key)
	}
	order := []int{
		strings.Index(out, "[general]"),
		strings.Index(out, "[identity]"),
		strings.Index(out, "[metrics]"),
		strings.Index(out, "[store]"),
	}
	assert.IsIncreasing(t, order)
	assert.NotEqual(t, -1, order[0])
	assert.Contains(t, out, "store.backend = redis (from ./intake.yaml)")
	assert.Contains(t, out, "log-level = info (default)")

	out, err = run(t, "list", "--plain", "--changed")
	require.NoError(t, err)
	assert.Equal(t, "[store]\nstore.backend = redis (from ./intake.yaml)\n", out)
}

func TestListAllDefaults(t *testing.T) {
	setupDirs(t)

	out, err := run(t, "list", "--changed")
	require.NoError(t, err)
	assert.Equal(t, "All settings are at their defaults\n", out)
}

func TestUnsetSection(t *testing.T) {
	dir := setupDirs(t)
	_, err := run(t, "set", "store.backend", "redis")
	require.NoError(t, err)
	_, err = run(t, "set", "store.nats.url", "nats://broker:4222")
	require.NoError(t, err)
	_, err = run(t, "set", "identity.hash-cost", "12")
	require.NoError(t, err)

	out, err := run(t, "unset", "store")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed store from ./intake.yaml")
	assert.Contains(t, out, "store.backend: default nats")

	data, err := os.ReadFile(filepath.Join(dir, "intake.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "store")
	assert.Contains(t, string(data), "hash-cost: 12")

	_, err = run(t, "unset", "stor")
	assert.ErrorContains(t, err, "unknown configuration key: stor")
}

func TestSchemaScope(t *testing.T) {
	out, err := run(t, "schema", "--scope", "repo")
	require.NoError(t, err)
	assert.NotContains(t, out, "token-secret")
	assert.NotContains(t, out, `"memory"`)

	_, err = run(t, "schema", "--scope", "team")
	assert.Error(t, err)
}

func TestSchemaCheck(t *testing.T) {
	dir := setupDirs(t)

	out, err := run(t, "schema", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "./intake.yaml: not present")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "intake.yaml"), []byte("identity:\n  token-secret: 0123456789abcdef\n"), 0644))
	out, err = run(t, "schema", "--check", "--scope", "repo")
	require.Error(t, err)
	assert.Contains(t, out, "identity.token-secret")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "intake.yaml"), []byte("store:\n  backend: nats\n"), 0644))
	_, err = run(t, "schema", "--check")
	assert.NoError(t, err)

	_, err = run(t, "schema", "--check", "--output", "x.json")
	assert.Error(t, err)
}

func TestSetCompletion(t *testing.T) {
	setupDirs(t)
	cmd := newSetCmd()

	keys, _ := cmd.ValidArgsFunction(cmd, nil, "store.b")
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "store.backend\t"))

	values, _ := cmd.ValidArgsFunction(cmd, []string{"store.backend"}, "")
	assert.Equal(t, []string{"nats", "redis"}, values)

	require.NoError(t, cmd.Flags().Set("global", "true"))
	values, _ = cmd.ValidArgsFunction(cmd, []string{"store.backend"}, "")
	assert.Equal(t, []string{"memory", "nats", "redis"}, values)
}
