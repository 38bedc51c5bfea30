// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitViper initializes Viper configuration with defaults and search paths
// Precedence order: ENV > dir-conf > user-conf > defaults
func InitViper() {
	viper.SetConfigType(ConfigType)

	for key, def := range ConfigRegistry {
		viper.SetDefault(key, def.Default)
	}
	// Defaults that depend on resolved paths
	viper.SetDefault("store.nats.dir", GlobalPaths.StoreDir)

	// Enable environment variable support (highest precedence)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads config files in precedence order
// Precedence: ENV > ./intake.yaml > ~/.config/intake/config.yaml > defaults
func LoadConfig() error {
	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(GlobalPaths.ConfigDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read user config file: %w", err)
		}
	} else {
		if err := validateConfigFile(GlobalPaths.ConfigDir, ScopeUser); err != nil {
			return err
		}
		warnMisplacedKeys(GlobalPaths.ConfigDir, "user")
	}

	// Local directory config overrides user config
	viper.SetConfigName(LocalConfigFile)
	viper.AddConfigPath(".")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read local config file: %w", err)
		}
	} else {
		// Repo config must not carry secrets
		if err := validateConfigFile(".", ScopeRepo); err != nil {
			return err
		}
		warnMisplacedKeys(".", "repo")
	}

	return nil
}

// GetUseTUI returns the use-tui configuration value
func GetUseTUI() bool {
	return viper.GetBool("use-tui")
}

// GetLogLevel returns the log-level configuration value
func GetLogLevel() string {
	return viper.GetString("log-level")
}

// GetStoreBackend returns the store.backend configuration value
func GetStoreBackend() string {
	return viper.GetString("store.backend")
}

// GetNATSURL returns the store.nats.url configuration value.
// Empty means an embedded server.
func GetNATSURL() string {
	return viper.GetString("store.nats.url")
}

// GetNATSDir returns the store.nats.dir configuration value
func GetNATSDir() string {
	return viper.GetString("store.nats.dir")
}

// GetRedisURL returns the store.redis.url configuration value
func GetRedisURL() string {
	return viper.GetString("store.redis.url")
}

// GetTokenSecret returns the identity.token-secret configuration value
// Priority: ENV:INTAKE_IDENTITY_TOKEN_SECRET > user config > defaults
func GetTokenSecret() string {
	return viper.GetString("identity.token-secret")
}

// GetTokenTTL returns the identity.token-ttl configuration value
func GetTokenTTL() time.Duration {
	d, err := time.ParseDuration(viper.GetString("identity.token-ttl"))
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// GetVerifyURL returns the identity.verify-url configuration value
func GetVerifyURL() string {
	return viper.GetString("identity.verify-url")
}

// GetHashCost returns the identity.hash-cost configuration value
func GetHashCost() int {
	return viper.GetInt("identity.hash-cost")
}

// GetMetricsAddr returns the metrics.addr configuration value.
// Empty disables the metrics endpoint.
func GetMetricsAddr() string {
	return viper.GetString("metrics.addr")
}

// validateConfigFile validates that a config file doesn't contain forbidden
// keys or invalid values for the given scope
func validateConfigFile(configDir string, scope ConfigScope) error {
	var configPath string
	if scope == ScopeUser {
		configPath = filepath.Join(configDir, ConfigFileName+DefaultConfigExt)
	} else {
		configPath = filepath.Join(".", LocalConfigFile+DefaultConfigExt)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// Read just this file so values from other layers don't leak in
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for validation: %w", err)
	}

	keys := flattenKeys(v.AllSettings(), "")
	for _, key := range keys {
		if err := ValidateKeyScope(key, scope); err != nil {
			return fmt.Errorf("invalid key in config file %s: %w", configPath, err)
		}

		if err := ValidateValue(key, v.Get(key), scope); err != nil {
			return fmt.Errorf("invalid value in config file %s: %w", configPath, err)
		}
	}

	return nil
}

// warnMisplacedKeys logs keys that are allowed in a scope but usually live
// in the other one
func warnMisplacedKeys(configDir, scopeName string) {
	var configPath string
	var currentScope ConfigScope
	if scopeName == "user" {
		configPath = filepath.Join(configDir, ConfigFileName+DefaultConfigExt)
		currentScope = ScopeUser
	} else {
		configPath = filepath.Join(".", LocalConfigFile+DefaultConfigExt)
		currentScope = ScopeRepo
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return
	}

	for _, key := range flattenKeys(v.AllSettings(), "") {
		def := GetKeyDefinition(key)
		if def == nil || def.Typical == nil {
			continue
		}
		if *def.Typical != currentScope {
			log.Debugf("Key '%s' in %s config (typically in %s config: %s)",
				key, scopeName, getScopeName(*def.Typical), DisplayConfigPath(*def.Typical))
		}
	}
}

// DisplayConfigPath is the path shown to users for a scope's config file
func DisplayConfigPath(scope ConfigScope) string {
	if scope == ScopeUser {
		return "~/.config/" + AppName + "/" + ConfigFileName + DefaultConfigExt
	}
	return "./" + LocalConfigFile + DefaultConfigExt
}

// BindFlags binds all relevant cobra flags to Viper
func BindFlags(flags *pflag.FlagSet) error {
	flagsToBind := map[string]string{
		"use-tui":      "use-tui",
		"log-level":    "log-level",
		"store":        "store.backend",
		"metrics-addr": "metrics.addr",
	}

	for flagName, key := range flagsToBind {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	return nil
}
