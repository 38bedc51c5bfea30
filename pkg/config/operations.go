// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ConfigScope indicates whether to operate on repo or user config
type ConfigScope int

const (
	ScopeRepo ConfigScope = iota // Repo config (./intake.yaml) - committed to git
	ScopeUser                    // User config (~/.config/intake/config.yaml) - personal preferences
)

// ConfigValue represents a configuration key-value pair with its source
type ConfigValue struct {
	Key    string
	Value  interface{}
	Source string
}

// ParseScope accepts "repo" (or "local") and "user" (or "global")
func ParseScope(name string) (ConfigScope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "repo", "local":
		return ScopeRepo, nil
	case "user", "global":
		return ScopeUser, nil
	}
	return ScopeRepo, fmt.Errorf("invalid scope: %s (must be 'user' or 'repo')", name)
}

// String implements fmt.Stringer
func (s ConfigScope) String() string {
	return getScopeName(s)
}

// getConfigPath returns the config file path based on scope
func getConfigPath(scope ConfigScope) string {
	if scope == ScopeUser {
		return filepath.Join(GlobalPaths.ConfigDir, ConfigFileName+DefaultConfigExt)
	}
	return filepath.Join(".", LocalConfigFile+DefaultConfigExt)
}

// getScopeName returns a human-readable scope name
func getScopeName(scope ConfigScope) string {
	if scope == ScopeUser {
		return "user"
	}
	return "repo"
}

// scopeFile opens the config file of one scope in an isolated Viper
// instance. A missing file yields an empty instance and os.ErrNotExist.
func scopeFile(scope ConfigScope) (*viper.Viper, error) {
	path := getConfigPath(scope)
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.SetConfigFile(path)

	if _, err := os.Stat(path); err != nil {
		return v, err
	}
	if err := v.ReadInConfig(); err != nil {
		return v, fmt.Errorf("failed to read %s config: %w", getScopeName(scope), err)
	}
	return v, nil
}

// SetConfigValue sets a configuration value in the specified scope
func SetConfigValue(key, valueStr string, scope ConfigScope) error {
	if err := ValidateKeyScope(key, scope); err != nil {
		return err
	}

	value := parseValueFor(key, valueStr)
	if err := ValidateValue(key, value, scope); err != nil {
		return err
	}

	v, err := scopeFile(scope)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(getConfigPath(scope)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigValue retrieves the effective value of key and where it came from
func GetConfigValue(key string) (*ConfigValue, error) {
	if !viper.IsSet(key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}
	return &ConfigValue{
		Key:    key,
		Value:  viper.Get(key),
		Source: getConfigSource(key),
	}, nil
}

// UnsetConfigValue removes a configuration key from the specified scope
func UnsetConfigValue(key string, scope ConfigScope) error {
	scopeName := getScopeName(scope)

	v, err := scopeFile(scope)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s config file does not exist: %s", scopeName, getConfigPath(scope))
	}
	if err != nil {
		return err
	}
	if !v.IsSet(key) {
		return fmt.Errorf("key '%s' not found in %s config", key, scopeName)
	}

	settings := v.AllSettings()
	if err := deleteNestedKey(settings, key); err != nil {
		return err
	}

	// Viper cannot delete keys, so the remaining settings go to a fresh instance
	out := viper.New()
	out.SetConfigType(ConfigType)
	for k, val := range settings {
		out.Set(k, val)
	}
	if err := out.WriteConfigAs(getConfigPath(scope)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// RegistryValues returns the effective value of every registered key,
// defaults included, sorted by key
func RegistryValues() []ConfigValue {
	keys := RegistryKeys()
	values := make([]ConfigValue, 0, len(keys))
	for _, key := range keys {
		values = append(values, ConfigValue{
			Key:    key,
			Value:  viper.Get(key),
			Source: getConfigSource(key),
		})
	}
	return values
}

// IsDefault reports whether the value comes from the built-in defaults
func (cv ConfigValue) IsDefault() bool {
	return cv.Source == "default"
}

// KeyGroup is the registry section a key belongs to: its first segment for
// dotted keys, "general" otherwise
func KeyGroup(key string) string {
	if group, _, ok := strings.Cut(key, "."); ok {
		return group
	}
	return "general"
}

// MatchKeys returns the registered keys equal to or nested under prefix
func MatchKeys(prefix string) []string {
	var keys []string
	for _, key := range RegistryKeys() {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			keys = append(keys, key)
		}
	}
	return keys
}

// SuggestKeys returns registered keys that share a section or a substring
// with an unknown key
func SuggestKeys(key string) []string {
	var out []string
	for _, known := range RegistryKeys() {
		if strings.Contains(known, key) || (strings.Contains(key, ".") && KeyGroup(known) == KeyGroup(key)) {
			out = append(out, known)
		}
	}
	return out
}

// CheckConfigFile validates the config file of scope against the registry.
// A missing file is valid.
func CheckConfigFile(scope ConfigScope) error {
	return validateConfigFile(GlobalPaths.ConfigDir, scope)
}

// ConfigFileExists reports whether the config file of scope is present
func ConfigFileExists(scope ConfigScope) bool {
	_, err := os.Stat(getConfigPath(scope))
	return err == nil
}

// parseValueFor parses a string value for key. String-typed keys keep the
// raw text so numeric-looking secrets stay strings.
func parseValueFor(key, valueStr string) interface{} {
	if def := GetKeyDefinition(key); def != nil {
		switch def.Type {
		case "string", "enum", "duration":
			return valueStr
		}
	}
	return parseValue(valueStr)
}

// parseValue guesses the type of an untyped value: bool, int, float or string
func parseValue(valueStr string) interface{} {
	switch strings.ToLower(valueStr) {
	case "true", "yes", "on", "enable", "enabled":
		return true
	case "false", "no", "off", "disable", "disabled":
		return false
	}
	if i, err := strconv.Atoi(valueStr); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return f
	}
	return valueStr
}

// keyToEnvVar converts a config key to its environment variable name
func keyToEnvVar(key string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(EnvPrefix + "_" + key))
}

// getConfigSource reports the highest-precedence layer that sets key:
// environment, repo file, user file, then the registry default
func getConfigSource(key string) string {
	if envKey := keyToEnvVar(key); os.Getenv(envKey) != "" {
		return "from ENV: " + envKey
	}
	for _, scope := range []ConfigScope{ScopeRepo, ScopeUser} {
		if v, err := scopeFile(scope); err == nil && v.IsSet(key) {
			return "from " + DisplayConfigPath(scope)
		}
	}
	return "default"
}

// splitKey splits a dot-notation key into parts, ignoring empty segments
func splitKey(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
}

// deleteNestedKey removes a dot-notation key from a nested settings map
func deleteNestedKey(m map[string]interface{}, key string) error {
	parts := splitKey(key)
	if len(parts) == 0 {
		return fmt.Errorf("key not found: %s", key)
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			return fmt.Errorf("key not found: %s", key)
		}
		nested, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot traverse through non-map value at %s", part)
		}
		current = nested
	}

	last := parts[len(parts)-1]
	if _, ok := current[last]; !ok {
		return fmt.Errorf("key not found: %s", key)
	}
	delete(current, last)
	return nil
}

// flattenKeys lists the leaf keys of a nested map in dot notation
func flattenKeys(m map[string]interface{}, prefix string) []string {
	var keys []string
	for k, v := range m {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nested, full)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}
