// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Work-Fort/Intake/pkg/store"
)

// ScopeConstraints defines per-scope validation rules for a configuration key
type ScopeConstraints struct {
	Forbidden  bool     // If true, this key cannot be set in this scope
	EnumValues []string // Valid enum values for this scope (overrides global EnumValues if set)
	Pattern    string   // Regex pattern for this scope (overrides global Pattern if set)
}

// ConfigKeyDefinition defines metadata for a configuration key
type ConfigKeyDefinition struct {
	Key         string      // Configuration key (dot notation)
	Type        string      // "string", "bool", "enum", "int", "duration"
	Default     interface{} // Default value
	Description string      // Help text

	// Global constraints (apply unless overridden by scope-specific constraints)
	EnumValues []string // Valid values for enum type (if Type="enum")
	Pattern    string   // Regex pattern for validation (if Type="string")
	Min, Max   int      // Bounds for int type (ignored when both are zero)

	// Typical is the scope the key usually lives in; nil means either
	Typical *ConfigScope

	// Per-scope constraints (optional - if nil, key is allowed in scope with global constraints)
	UserConstraints *ScopeConstraints // Constraints when setting in user config
	RepoConstraints *ScopeConstraints // Constraints when setting in repo config
}

func scopePtr(s ConfigScope) *ConfigScope {
	return &s
}

// ConfigRegistry holds all known configuration keys with per-scope constraints.
//
// Constraint System:
//   - No constraints: Key can be set in any scope with same validation rules
//   - Forbidden constraint: Key cannot be set in the specified scope
//   - Scope-specific EnumValues: Different allowed values per scope
//   - Scope-specific Pattern: Different regex validation per scope
var ConfigRegistry = map[string]ConfigKeyDefinition{
	"use-tui": {
		Key:         "use-tui",
		Type:        "bool",
		Default:     true,
		Description: "Use the terminal wizard when stdin is a TTY",
	},

	"log-level": {
		Key:         "log-level",
		Type:        "enum",
		Default:     "info",
		Description: "Log verbosity level",
		EnumValues:  []string{"disabled", "debug", "info", "warn", "error"},
	},

	"store.backend": {
		Key:         "store.backend",
		Type:        "enum",
		Default:     store.BackendNATS,
		Description: "Document store: memory (ephemeral), nats (JetStream key-value) or redis",
		EnumValues:  store.Backends(),
		// Production repos may not fall back to an ephemeral store
		RepoConstraints: &ScopeConstraints{
			EnumValues: slices.DeleteFunc(store.Backends(), func(b string) bool { return b == store.BackendMemory }),
		},
	},

	"store.nats.url": {
		Key:         "store.nats.url",
		Type:        "string",
		Default:     "",
		Description: "NATS server URL; empty starts an embedded server",
		Pattern:     `^$|^(nats|tls|ws|wss)://`,
	},

	"store.nats.dir": {
		Key:         "store.nats.dir",
		Type:        "string",
		Default:     "", // Set in InitViper() using GlobalPaths.StoreDir
		Description: "JetStream storage directory for the embedded server",
		Typical:     scopePtr(ScopeUser),
	},

	"store.redis.url": {
		Key:         "store.redis.url",
		Type:        "string",
		Default:     "",
		Description: "Redis URL (may embed a password)",
		Pattern:     `^$|^rediss?://`,
		RepoConstraints: &ScopeConstraints{
			Forbidden: true,
		},
	},

	"identity.token-secret": {
		Key:         "identity.token-secret",
		Type:        "string",
		Default:     "", // No default for sensitive keys
		Description: "HMAC secret used to sign verification links (min. 16 characters)",
		Pattern:     `^.{16,}$`,
		RepoConstraints: &ScopeConstraints{
			Forbidden: true,
		},
	},

	"identity.token-ttl": {
		Key:         "identity.token-ttl",
		Type:        "duration",
		Default:     "24h",
		Description: "Lifetime of verification links (Go duration, e.g. 24h)",
	},

	"identity.verify-url": {
		Key:         "identity.verify-url",
		Type:        "string",
		Default:     "http://localhost:3000/auth/verify",
		Description: "Page that verification links point at",
		Pattern:     `^https?://`,
		Typical:     scopePtr(ScopeRepo),
	},

	"identity.hash-cost": {
		Key:         "identity.hash-cost",
		Type:        "int",
		Default:     10,
		Description: "bcrypt cost for stored passwords",
		Min:         4,
		Max:         31,
		Typical:     scopePtr(ScopeRepo),
	},

	"metrics.addr": {
		Key:         "metrics.addr",
		Type:        "string",
		Default:     "",
		Description: "Listen address for /metrics and /healthz; empty disables",
		Pattern:     `^$|^[^\s]*:[0-9]+$`,
	},
}

// GetKeyDefinition returns the definition for a key, or nil if not found
func GetKeyDefinition(key string) *ConfigKeyDefinition {
	if def, ok := ConfigRegistry[key]; ok {
		return &def
	}
	return nil
}

// RegistryKeys returns all registered keys in sorted order
func RegistryKeys() []string {
	keys := make([]string, 0, len(ConfigRegistry))
	for key := range ConfigRegistry {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// AllowedValues lists the values key accepts in scope: the enum values
// (narrowed by scope constraints) or true/false for booleans. Free-form
// keys return nil.
func AllowedValues(key string, scope ConfigScope) []string {
	def := GetKeyDefinition(key)
	if def == nil {
		return nil
	}
	switch def.Type {
	case "bool":
		return []string{"true", "false"}
	case "enum":
		if c := constraintsFor(def, scope); c != nil && c.EnumValues != nil {
			return c.EnumValues
		}
		return def.EnumValues
	}
	return nil
}

func constraintsFor(def *ConfigKeyDefinition, scope ConfigScope) *ScopeConstraints {
	switch scope {
	case ScopeUser:
		return def.UserConstraints
	case ScopeRepo:
		return def.RepoConstraints
	}
	return nil
}

// ValidateKeyScope checks if a key can be set in the given scope
// Returns an error if the key is forbidden in the specified scope
func ValidateKeyScope(key string, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	constraints := constraintsFor(def, scope)
	if constraints != nil && constraints.Forbidden {
		switch scope {
		case ScopeUser:
			return fmt.Errorf(
				"key '%s' cannot be set in user config\n\n"+
					"Hint: Remove --global flag:\n"+
					"  intake config set %s <value>\n\n"+
					"This key must be set in repo config: ./intake.yaml",
				key,
				key,
			)
		case ScopeRepo:
			return fmt.Errorf(
				"key '%s' cannot be set in repo config (sensitive setting)\n\n"+
					"Hint: Use --global flag:\n"+
					"  intake config set --global %s <value>\n\n"+
					"User config: ~/.config/intake/config.yaml\n"+
					"This setting must NOT be committed to version control.",
				key,
				key,
			)
		}
	}

	return nil
}

// ValidateValue checks if a value is valid for the given key in the specified scope
// Applies per-scope constraints if defined, otherwise uses global constraints
func ValidateValue(key string, value interface{}, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	constraints := constraintsFor(def, scope)

	switch def.Type {
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key '%s' must be a boolean", key)
		}

	case "int":
		i, ok := value.(int)
		if !ok {
			return fmt.Errorf("key '%s' must be an integer", key)
		}
		if (def.Min != 0 || def.Max != 0) && (i < def.Min || i > def.Max) {
			return fmt.Errorf("key '%s' must be between %d and %d (got %d)", key, def.Min, def.Max, i)
		}

	case "duration":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a duration such as 24h", key)
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return fmt.Errorf("key '%s': %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("key '%s' must be positive", key)
		}

	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}

		pattern := def.Pattern
		if constraints != nil && constraints.Pattern != "" {
			pattern = constraints.Pattern
		}

		if pattern != "" {
			matched, err := regexp.MatchString(pattern, str)
			if err != nil {
				return fmt.Errorf("pattern validation error: %w", err)
			}
			if !matched {
				return fmt.Errorf(
					"key '%s' value '%s' does not match required format for %s scope",
					key,
					redact(key, str),
					getScopeName(scope),
				)
			}
		}

	case "enum":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}

		enumValues := AllowedValues(key, scope)
		if !slices.Contains(enumValues, str) {
			return fmt.Errorf(
				"key '%s' must be one of %v in %s scope (got '%s')",
				key,
				enumValues,
				getScopeName(scope),
				str,
			)
		}
	}

	if key == "store.nats.dir" {
		str, _ := value.(string)
		if scope == ScopeRepo {
			if err := validateRepoPath(str); err != nil {
				return fmt.Errorf("key '%s': %w", key, err)
			}
		} else {
			if err := validateDirPath(str); err != nil {
				return fmt.Errorf("key '%s': %w", key, err)
			}
		}
	}

	return nil
}

// redact hides secret values in error messages
func redact(key, value string) string {
	if key == "identity.token-secret" {
		return strings.Repeat("*", len(value))
	}
	return value
}

// validateDirPath validates a directory path for user config
// - Can be absolute or relative
// - Must be existing directory OR non-existent (will be created)
// - Must NOT point to an existing file
func validateDirPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path points to an existing file; must be a directory or non-existent path")
	}

	return nil
}

// validateRepoPath validates that a path is safe for use in repo config
// - Must not traverse outside repo (no ../)
// - Must be existing directory OR non-existent (will be created)
// - Must NOT point to an existing file
func validateRepoPath(path string) error {
	cleaned := filepath.Clean(path)

	if strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, string(filepath.Separator)+"..") {
		return fmt.Errorf("path must not traverse outside repository (no '../' allowed)")
	}

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("path must be relative to repository root")
	}

	return validateDirPath(cleaned)
}

// DisplayValue masks secrets before a value is printed
func DisplayValue(key string, value interface{}) interface{} {
	str, ok := value.(string)
	if !ok || str == "" {
		return value
	}
	switch key {
	case "identity.token-secret":
		return redact(key, str)
	case "store.redis.url":
		if u, err := url.Parse(str); err == nil {
			return u.Redacted()
		}
	}
	return value
}
