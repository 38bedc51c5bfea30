// SPDX-License-Identifier: Apache-2.0
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// setupConfigDirs points GlobalPaths and the working directory at a temp dir
func setupConfigDirs(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	saved := GlobalPaths
	t.Cleanup(func() { GlobalPaths = saved })
	GlobalPaths = &Paths{
		ConfigDir: filepath.Join(tmpDir, "config"),
		StoreDir:  filepath.Join(tmpDir, "store"),
	}
	if err := os.MkdirAll(GlobalPaths.ConfigDir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(tmpDir)
	return tmpDir
}

func TestSetConfigValue_ValidatesScope(t *testing.T) {
	setupConfigDirs(t)

	if err := SetConfigValue("use-tui", "false", ScopeRepo); err != nil {
		t.Errorf("SetConfigValue should allow use-tui in repo scope: %v", err)
	}
	if err := SetConfigValue("identity.hash-cost", "12", ScopeUser); err != nil {
		t.Errorf("SetConfigValue should allow repo-typical key in user scope: %v", err)
	}
}

func TestSetConfigValue_ValidatesValue(t *testing.T) {
	setupConfigDirs(t)

	if err := SetConfigValue("log-level", "invalid-level", ScopeUser); err == nil {
		t.Error("SetConfigValue should reject invalid enum value")
	}
	if err := SetConfigValue("identity.hash-cost", "99", ScopeUser); err == nil {
		t.Error("SetConfigValue should reject out-of-range cost")
	}
	if err := SetConfigValue("log-level", "info", ScopeUser); err != nil {
		t.Errorf("SetConfigValue should accept valid enum: %v", err)
	}
}

func TestSetConfigValue_NumericSecretStaysString(t *testing.T) {
	setupConfigDirs(t)

	if err := SetConfigValue("identity.token-secret", "12345678901234567890", ScopeUser); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(GlobalPaths.ConfigDir, "config.yaml"))
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	if got := v.GetString("identity.token-secret"); got != "12345678901234567890" {
		t.Errorf("token-secret = %q", got)
	}
}

func TestSetConfigValue_ForbiddenKeyInRepoScope(t *testing.T) {
	setupConfigDirs(t)

	err := SetConfigValue("identity.token-secret", "0123456789abcdef", ScopeRepo)
	if err == nil {
		t.Fatal("SetConfigValue should reject forbidden key in repo scope")
	}
	if !strings.Contains(err.Error(), "cannot be set in repo config") {
		t.Errorf("Error should mention repo restriction: %v", err)
	}
	if _, statErr := os.Stat(LocalConfigFile + DefaultConfigExt); !os.IsNotExist(statErr) {
		t.Error("repo config should not have been written")
	}
}

func TestUnsetConfigValue(t *testing.T) {
	setupConfigDirs(t)

	if err := SetConfigValue("store.backend", "redis", ScopeRepo); err != nil {
		t.Fatal(err)
	}
	if err := SetConfigValue("use-tui", "false", ScopeRepo); err != nil {
		t.Fatal(err)
	}
	if err := UnsetConfigValue("store.backend", ScopeRepo); err != nil {
		t.Fatalf("UnsetConfigValue: %v", err)
	}

	content, err := os.ReadFile(LocalConfigFile + DefaultConfigExt)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "redis") {
		t.Errorf("store.backend should be removed:\n%s", content)
	}
	if !strings.Contains(string(content), "use-tui") {
		t.Errorf("use-tui should be kept:\n%s", content)
	}

	if err := UnsetConfigValue("store.backend", ScopeRepo); err == nil {
		t.Error("unsetting a missing key should fail")
	}
	if err := UnsetConfigValue("use-tui", ScopeUser); err == nil {
		t.Error("unsetting from a missing user config should fail")
	}
}

func TestParseValueFor(t *testing.T) {
	tests := []struct {
		key  string
		raw  string
		want interface{}
	}{
		{"use-tui", "yes", true},
		{"identity.hash-cost", "12", 12},
		{"identity.token-ttl", "1h", "1h"},
		{"identity.token-secret", "0000000000000000", "0000000000000000"},
		{"log-level", "debug", "debug"},
		{"unknown", "3.5", 3.5},
	}
	for _, tt := range tests {
		if got := parseValueFor(tt.key, tt.raw); got != tt.want {
			t.Errorf("parseValueFor(%s, %s) = %#v, want %#v", tt.key, tt.raw, got, tt.want)
		}
	}
}

func TestKeyToEnvVar(t *testing.T) {
	if got := keyToEnvVar("identity.token-secret"); got != "INTAKE_IDENTITY_TOKEN_SECRET" {
		t.Errorf("keyToEnvVar = %s", got)
	}
}

func TestFlattenKeys(t *testing.T) {
	nested := map[string]interface{}{
		"use-tui": true,
		"store": map[string]interface{}{
			"backend": "nats",
			"nats": map[string]interface{}{
				"url": "nats://localhost:4222",
			},
		},
	}

	keys := flattenKeys(nested, "")
	slices.Sort(keys)
	want := []string{"store.backend", "store.nats.url", "use-tui"}
	if !slices.Equal(keys, want) {
		t.Errorf("flattenKeys = %v, want %v", keys, want)
	}
}

func TestDeleteNestedKey(t *testing.T) {
	m := map[string]interface{}{
		"store": map[string]interface{}{"backend": "nats"},
		"flat":  "x",
	}
	if err := deleteNestedKey(m, "store.backend"); err != nil {
		t.Fatal(err)
	}
	if err := deleteNestedKey(m, "flat.child"); err == nil {
		t.Error("traversing a scalar should fail")
	}
	if err := deleteNestedKey(m, "store.backend"); err == nil {
		t.Error("deleting twice should fail")
	}
}

func TestWarnMisplacedKeys(t *testing.T) {
	setupConfigDirs(t)

	configPath := filepath.Join(GlobalPaths.ConfigDir, "config.yaml")
	content := "identity:\n  hash-cost: 12\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Only logs; must not panic
	warnMisplacedKeys(GlobalPaths.ConfigDir, "user")
}

func TestValidateConfigFile_RejectsSecretInRepo(t *testing.T) {
	setupConfigDirs(t)

	content := "identity:\n  token-secret: 0123456789abcdef0123\n"
	if err := os.WriteFile(LocalConfigFile+DefaultConfigExt, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	err := validateConfigFile(".", ScopeRepo)
	if err == nil {
		t.Fatal("repo config with a secret should be rejected")
	}
	if !strings.Contains(err.Error(), "token-secret") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestGetTokenTTLFallsBack(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("identity.token-ttl", "garbage")
	if got := GetTokenTTL().Hours(); got != 24 {
		t.Errorf("GetTokenTTL fallback = %vh, want 24h", got)
	}
	viper.Set("identity.token-ttl", "2h")
	if got := GetTokenTTL().Hours(); got != 2 {
		t.Errorf("GetTokenTTL = %vh, want 2h", got)
	}
}

func TestGetConfigSource(t *testing.T) {
	setupConfigDirs(t)

	if got := getConfigSource("identity.hash-cost"); got != "default" {
		t.Errorf("unset key source = %q, want default", got)
	}

	if err := SetConfigValue("identity.hash-cost", "12", ScopeUser); err != nil {
		t.Fatal(err)
	}
	if got := getConfigSource("identity.hash-cost"); !strings.Contains(got, ConfigFileName+DefaultConfigExt) {
		t.Errorf("user key source = %q", got)
	}

	// Repo config overrides user config
	if err := SetConfigValue("identity.hash-cost", "11", ScopeRepo); err != nil {
		t.Fatal(err)
	}
	if got := getConfigSource("identity.hash-cost"); got != "from ./intake.yaml" {
		t.Errorf("repo key source = %q", got)
	}

	t.Setenv("INTAKE_IDENTITY_HASH_COST", "13")
	if got := getConfigSource("identity.hash-cost"); got != "from ENV: INTAKE_IDENTITY_HASH_COST" {
		t.Errorf("env key source = %q", got)
	}
}

func TestParseScope(t *testing.T) {
	for name, want := range map[string]ConfigScope{"repo": ScopeRepo, "local": ScopeRepo, " User ": ScopeUser, "global": ScopeUser} {
		got, err := ParseScope(name)
		if err != nil || got != want {
			t.Errorf("ParseScope(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseScope("team"); err == nil {
		t.Error("ParseScope should reject an unknown scope")
	}
}

func TestRegistryKeyHelpers(t *testing.T) {
	if got := KeyGroup("store.nats.url"); got != "store" {
		t.Errorf("KeyGroup = %q", got)
	}
	if got := KeyGroup("use-tui"); got != "general" {
		t.Errorf("KeyGroup = %q", got)
	}

	if got := MatchKeys("store.nats"); !slices.Equal(got, []string{"store.nats.dir", "store.nats.url"}) {
		t.Errorf("MatchKeys(store.nats) = %v", got)
	}
	if got := MatchKeys("store.nat"); len(got) != 0 {
		t.Errorf("MatchKeys matched a partial segment: %v", got)
	}

	suggestions := SuggestKeys("identity.token")
	for _, want := range []string{"identity.token-secret", "identity.token-ttl"} {
		if !slices.Contains(suggestions, want) {
			t.Errorf("SuggestKeys missing %s: %v", want, suggestions)
		}
	}
}

func TestAllowedValuesNarrowsBackendInRepo(t *testing.T) {
	if got := AllowedValues("store.backend", ScopeUser); !slices.Equal(got, []string{"memory", "nats", "redis"}) {
		t.Errorf("user backends = %v", got)
	}
	if got := AllowedValues("store.backend", ScopeRepo); !slices.Equal(got, []string{"nats", "redis"}) {
		t.Errorf("repo backends = %v", got)
	}
	if got := AllowedValues("use-tui", ScopeRepo); !slices.Equal(got, []string{"true", "false"}) {
		t.Errorf("bool values = %v", got)
	}
	if got := AllowedValues("identity.verify-url", ScopeRepo); got != nil {
		t.Errorf("free-form key values = %v", got)
	}
}

func TestCheckConfigFile(t *testing.T) {
	dir := setupConfigDirs(t)

	if ConfigFileExists(ScopeRepo) {
		t.Fatal("repo config should not exist yet")
	}
	if err := CheckConfigFile(ScopeRepo); err != nil {
		t.Errorf("missing file should be valid: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "intake.yaml"), []byte("store:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !ConfigFileExists(ScopeRepo) {
		t.Fatal("repo config should exist")
	}
	if err := CheckConfigFile(ScopeRepo); err == nil {
		t.Error("memory backend should be rejected in repo config")
	}
}
