// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyBinding represents a single key action
type KeyBinding struct {
	Key         string   // Display name: "ENTER", "TAB", "ESC"
	Keys        []string // Actual keys to match: ["enter"], ["tab"], ["esc", "ctrl+b"]
	Description string   // What it does
}

// KeyBindingSet is a collection of related key bindings
type KeyBindingSet struct {
	Bindings []KeyBinding
}

// Contains checks if a key press matches any binding in the set
func (kbs KeyBindingSet) Contains(key string) *KeyBinding {
	for i := range kbs.Bindings {
		for _, k := range kbs.Bindings[i].Keys {
			if k == key {
				return &kbs.Bindings[i]
			}
		}
	}
	return nil
}

// Render formats key bindings for display
// Format: "[KEY] Action  •  [KEY] Action"
func (kbs KeyBindingSet) Render(style lipgloss.Style) string {
	if len(kbs.Bindings) == 0 {
		return ""
	}

	parts := make([]string, len(kbs.Bindings))
	for i, binding := range kbs.Bindings {
		parts[i] = fmt.Sprintf("[%s] %s", binding.Key, binding.Description)
	}

	return style.Render(strings.Join(parts, "  •  "))
}

// RenderInline formats key bindings for inline display (more compact)
// Format: "Key: action | Key: action"
func (kbs KeyBindingSet) RenderInline(style lipgloss.Style) string {
	if len(kbs.Bindings) == 0 {
		return ""
	}

	parts := make([]string, len(kbs.Bindings))
	caser := cases.Title(language.Und, cases.NoLower)
	for i, binding := range kbs.Bindings {
		keyName := caser.String(binding.Keys[0])
		parts[i] = fmt.Sprintf("%s: %s", keyName, strings.ToLower(binding.Description))
	}

	return style.Render(strings.Join(parts, " | "))
}

// Key binding sets for the step wizard

// FocusKeyBindings move between inputs of the active step
func FocusKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "TAB", Keys: []string{"tab", "down"}, Description: "Next Field"},
			{Key: "S-TAB", Keys: []string{"shift+tab", "up"}, Description: "Previous Field"},
			{Key: "SPACE", Keys: []string{" ", "space"}, Description: "Toggle"},
		},
	}
}

// StepKeyBindings returns the navigation controls available on a step.
// Only enabled controls are listed.
func StepKeyBindings(primary string, canSkip, canRetreat bool) KeyBindingSet {
	var set KeyBindingSet
	if primary != "" {
		set.Bindings = append(set.Bindings, KeyBinding{Key: "ENTER", Keys: []string{"enter"}, Description: primary})
	}
	if canSkip {
		set.Bindings = append(set.Bindings, KeyBinding{Key: "^S", Keys: []string{"ctrl+s"}, Description: "Skip"})
	}
	if canRetreat {
		set.Bindings = append(set.Bindings, KeyBinding{Key: "ESC", Keys: []string{"esc", "ctrl+b"}, Description: "Back"})
	}
	set.Bindings = append(set.Bindings, KeyBinding{Key: "^C", Keys: []string{"ctrl+c"}, Description: "Quit"})
	return set
}

// BackKeys are the keys bound to Retreat regardless of whether it is enabled
func BackKeys() KeyBindingSet {
	return KeyBindingSet{Bindings: []KeyBinding{{Key: "ESC", Keys: []string{"esc", "ctrl+b"}, Description: "Back"}}}
}
