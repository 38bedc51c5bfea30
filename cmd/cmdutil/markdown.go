// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// TerminalWidth returns the width of stdout, or 100 when it is not a terminal
func TerminalWidth() int {
	width := 100 // Default fallback
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return width
}

// RenderMarkdown renders markdown through glamour at the terminal width
func RenderMarkdown(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// PrintMarkdown writes rendered markdown to w, falling back to the raw text
func PrintMarkdown(w io.Writer, markdown string) {
	rendered, err := RenderMarkdown(markdown)
	if err != nil {
		fmt.Fprintln(w, markdown)
		return
	}
	fmt.Fprintln(w, strings.TrimRight(rendered, " \n"))
}
