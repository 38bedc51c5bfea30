// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the application color scheme
type Theme struct {
	Primary   string // Bright mint green
	Secondary string // Bright cyan
	Muted     string // Muted purple-gray
	Success   string // Success/affirmative color
	Info      string // Info/neutral color
	Warning   string // Warning color
	Error     string // Error/destructive color
}

// CurrentTheme is the active theme used throughout the application
var CurrentTheme = Theme{
	Primary:   "#82FB9C",
	Secondary: "#7cf8f7",
	Muted:     "#6a6e95",
	Success:   "#82FB9C",
	Info:      "#7cf8f7",
	Warning:   "#FFD700",
	Error:     "#FF6B6B",
}

// Color getters return lipgloss.Color for easy styling

func (t Theme) GetPrimaryColor() lipgloss.Color {
	return lipgloss.Color(t.Primary)
}

func (t Theme) GetSecondaryColor() lipgloss.Color {
	return lipgloss.Color(t.Secondary)
}

func (t Theme) GetMutedColor() lipgloss.Color {
	return lipgloss.Color(t.Muted)
}

func (t Theme) GetSuccessColor() lipgloss.Color {
	return lipgloss.Color(t.Success)
}

func (t Theme) GetInfoColor() lipgloss.Color {
	return lipgloss.Color(t.Info)
}

func (t Theme) GetWarningColor() lipgloss.Color {
	return lipgloss.Color(t.Warning)
}

func (t Theme) GetErrorColor() lipgloss.Color {
	return lipgloss.Color(t.Error)
}

// Common style builders for consistent UI

func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetSuccessColor()).Bold(true)
}

func (t Theme) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetInfoColor())
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetWarningColor())
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetErrorColor())
}

func (t Theme) SubtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetMutedColor())
}

// Message formatters with theme-appropriate icons

func (t Theme) SuccessMessage(text string) string {
	return t.SuccessStyle().Render("✓ " + text)
}

func (t Theme) InfoMessage(text string) string {
	return t.InfoStyle().Render("ℹ " + text)
}

func (t Theme) WarningMessage(text string) string {
	return t.WarningStyle().Render("⚠ " + text)
}

func (t Theme) ErrorMessage(text string) string {
	return t.ErrorStyle().Render("✗ " + text)
}

// Indicator helpers for consistent symbols across UI

// ActiveIndicator returns a solid dot for active states
func (t Theme) ActiveIndicator() string {
	return t.SuccessStyle().Render("●")
}

// PendingIndicator returns an empty circle for pending states
func (t Theme) PendingIndicator() string {
	return t.SubtleStyle().Render("○")
}

// CompleteIndicator returns a checkmark for completed states
func (t Theme) CompleteIndicator() string {
	return t.SuccessStyle().Render("✓")
}

// SkippedIndicator returns a forward arrow for skipped steps
func (t Theme) SkippedIndicator() string {
	return t.WarningStyle().Render("↷")
}

// ErrorIndicator returns an X for error states
func (t Theme) ErrorIndicator() string {
	return t.ErrorStyle().Render("✗")
}

// Checkbox renders a collection option marker
func (t Theme) Checkbox(checked bool) string {
	if checked {
		return t.SuccessStyle().Render("[x]")
	}
	return t.SubtleStyle().Render("[ ]")
}

// RenderHeader renders a consistent header banner across all TUIs
// Format: "  INTAKE  ▸  SECTION  ▸  [CONTEXT]  "
func (t Theme) RenderHeader(width int, section, context string) string {
	headerText := fmt.Sprintf("  INTAKE  ▸  %s  ▸  [%s]  ", strings.ToUpper(section), context)
	return lipgloss.NewStyle().
		Foreground(t.GetSecondaryColor()).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render(headerText)
}

// RenderFooter renders a consistent footer with box characters
// Format: "╰─ [content] ─╯"
func (t Theme) RenderFooter(width int, content string) string {
	footerText := "╰─ " + content + " ─╯"
	return lipgloss.NewStyle().
		Foreground(t.GetMutedColor()).
		Width(width).
		Align(lipgloss.Center).
		Render(footerText)
}
