// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/Intake/pkg/config"
)

// TabState represents the state of a tab
type TabState int

const (
	TabPending TabState = iota
	TabActive
	TabComplete
	TabSkipped
	TabError
)

func (s TabState) String() string {
	switch s {
	case TabActive:
		return "active"
	case TabComplete:
		return "complete"
	case TabSkipped:
		return "skipped"
	case TabError:
		return "error"
	default:
		return "pending"
	}
}

// Tab represents a single tab with state and content
type Tab struct {
	Title   string
	State   TabState
	Busy    bool // Active tab shows the spinner instead of a dot
	Spinner spinner.Model
}

// TabsConfig holds configuration for tab rendering
type TabsConfig struct {
	ActiveIndex int
	Width       int // Total width available for all tabs
}

// NewSpinner returns the spinner used by busy tabs
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(config.CurrentTheme.GetSecondaryColor())
	return s
}

// tabTitle renders the indicator and title for a tab
func tabTitle(tab Tab) (lipgloss.Color, string) {
	theme := config.CurrentTheme
	switch tab.State {
	case TabActive:
		if tab.Busy {
			return theme.GetSecondaryColor(), tab.Spinner.View() + " " + tab.Title
		}
		return theme.GetSecondaryColor(), theme.ActiveIndicator() + " " + tab.Title
	case TabComplete:
		return theme.GetSuccessColor(), theme.CompleteIndicator() + " " + tab.Title
	case TabSkipped:
		return theme.GetWarningColor(), theme.SkippedIndicator() + " " + tab.Title
	case TabError:
		return theme.GetErrorColor(), theme.ErrorIndicator() + " " + tab.Title
	default:
		return theme.GetMutedColor(), theme.PendingIndicator() + " " + tab.Title
	}
}

// RenderTabs renders a row of step tabs joined to the content pane below
func RenderTabs(tabs []Tab, cfg TabsConfig) string {
	theme := config.CurrentTheme
	inactiveTabBorder := tabBorderWithBottom("┴", "─", "┴")

	var renderedTabs []string
	for i, tab := range tabs {
		isFirst := i == 0
		isLast := i == len(tabs)-1
		isActive := i == cfg.ActiveIndex

		color, titleText := tabTitle(tab)
		border := inactiveTabBorder

		if isActive {
			// Tab being viewed opens into the content pane
			border.BottomLeft = "┘"
			border.Bottom = " "
			border.BottomRight = "└"
			if isFirst {
				border.BottomLeft = "│"
			}
		} else {
			if isFirst {
				border.BottomLeft = "├"
			}
			if isLast {
				border.BottomRight = "┴"
			}
		}

		style := lipgloss.NewStyle().
			Border(border, true).
			BorderForeground(color).
			Padding(0, 1)
		renderedTabs = append(renderedTabs, style.Render(titleText))
	}

	tabsRow := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
	tabsWidth := lipgloss.Width(tabsRow)
	if cfg.Width <= tabsWidth {
		return tabsRow
	}

	// Extend the bottom line to the pane's right border
	remainingWidth := cfg.Width - tabsWidth
	blank := strings.Repeat(" ", remainingWidth)
	bottomLine := lipgloss.NewStyle().
		Foreground(theme.GetPrimaryColor()).
		Render(strings.Repeat("─", remainingWidth-1) + "┐")
	extension := lipgloss.JoinVertical(lipgloss.Left, blank, blank, bottomLine)

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsRow, extension)
}

// RenderTabContent renders the content pane for the active tab
func RenderTabContent(content string, width, height int) string {
	theme := config.CurrentTheme

	windowStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.GetPrimaryColor()).
		BorderTop(false). // No top border - connects to tabs
		Width(width).
		Height(height).
		Padding(1, 2)

	return windowStyle.Render(content)
}

// tabBorderWithBottom creates a custom border with specified bottom characters
func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}
