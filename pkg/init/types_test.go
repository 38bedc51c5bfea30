// SPDX-License-Identifier: Apache-2.0
package init_test

import (
	"testing"

	initpkg "github.com/Work-Fort/Intake/pkg/init"
)

func TestDefaultSettings_AreValid(t *testing.T) {
	if err := initpkg.DefaultSettings().Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
}

func TestInitSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*initpkg.InitSettings)
		wantErr bool
	}{
		{"redis backend", func(s *initpkg.InitSettings) { s.StoreBackend = "redis" }, false},
		{"memory backend", func(s *initpkg.InitSettings) { s.StoreBackend = "memory" }, true},
		{"relative store dir", func(s *initpkg.InitSettings) { s.StoreDir = "data/store" }, false},
		{"absolute store dir", func(s *initpkg.InitSettings) { s.StoreDir = "/var/lib/intake" }, true},
		{"bad nats url", func(s *initpkg.InitSettings) { s.NATSURL = "http://nats" }, true},
		{"bad verify url", func(s *initpkg.InitSettings) { s.VerifyURL = "vets.example" }, true},
		{"hash cost too low", func(s *initpkg.InitSettings) { s.HashCost = 3 }, true},
		{"bad ttl", func(s *initpkg.InitSettings) { s.TokenTTL = "a day" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := initpkg.DefaultSettings()
			tt.modify(&settings)
			err := settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseHashCost(t *testing.T) {
	if cost, err := initpkg.ParseHashCost("12"); err != nil || cost != 12 {
		t.Errorf("ParseHashCost(12) = %d, %v", cost, err)
	}
	for _, bad := range []string{"twelve", "2", "40"} {
		if _, err := initpkg.ParseHashCost(bad); err == nil {
			t.Errorf("ParseHashCost(%q) should fail", bad)
		}
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := initpkg.GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, err := initpkg.GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 {
		t.Errorf("secret length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("secrets should differ")
	}
}
