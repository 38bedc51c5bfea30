// SPDX-License-Identifier: Apache-2.0
package init

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/Work-Fort/Intake/pkg/config"
)

// SchemaPath is where the repo-scope JSON schema is written
const SchemaPath = ".intake/repo.schema.json"

// ErrAlreadyInitialized is returned when intake.yaml already exists
var ErrAlreadyInitialized = errors.New("already initialized: intake.yaml already exists in the current directory")

// InitSettings holds the deployment settings written to intake.yaml
type InitSettings struct {
	StoreBackend string // "nats" or "redis"
	NATSURL      string // empty starts an embedded server
	StoreDir     string // repo-relative JetStream dir; empty keeps the user default
	VerifyURL    string
	HashCost     int
	TokenTTL     string

	// Results
	FilesCreated []string
}

// DefaultSettings mirrors the registry defaults
func DefaultSettings() InitSettings {
	return InitSettings{
		StoreBackend: "nats",
		VerifyURL:    "http://localhost:3000/auth/verify",
		HashCost:     10,
		TokenTTL:     "24h",
	}
}

// Validate checks every setting against the repo-scope constraints of its
// config key
func (s InitSettings) Validate() error {
	checks := []struct {
		key   string
		value interface{}
		skip  bool
	}{
		{"store.backend", s.StoreBackend, false},
		{"store.nats.url", s.NATSURL, false},
		{"store.nats.dir", s.StoreDir, s.StoreDir == ""},
		{"identity.verify-url", s.VerifyURL, false},
		{"identity.hash-cost", s.HashCost, false},
		{"identity.token-ttl", s.TokenTTL, false},
	}
	for _, c := range checks {
		if c.skip {
			continue
		}
		if err := config.ValidateValue(c.key, c.value, config.ScopeRepo); err != nil {
			return err
		}
	}
	return nil
}

// ParseHashCost parses the --hash-cost flag or form input
func ParseHashCost(s string) (int, error) {
	cost, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("hash cost must be a number: %w", err)
	}
	return cost, config.ValidateValue("identity.hash-cost", cost, config.ScopeRepo)
}

// GenerateSecret returns a random token secret (64 hex characters)
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
