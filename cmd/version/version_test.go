// SPDX-License-Identifier: Apache-2.0
package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"v1.2.3", "1.2.3"},
		{"not-a-version", "not-a-version"},
	}
	for _, tt := range tests {
		if got := String(tt.in); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := String(""); got == "" {
		t.Error("String(\"\") should fall back to a placeholder")
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := NewVersionCmd("0.4.0")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "intake version 0.4.0 (record schema ") {
		t.Errorf("unexpected output %q", out.String())
	}
}
