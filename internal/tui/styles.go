package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	colorError  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	boughtStyle   = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	labelStyle    = lipgloss.NewStyle().Width(10).Foreground(colorMuted)
	focusedLabel  = labelStyle.Foreground(colorAccent).Bold(true)
	formBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	chipTextColor = lipgloss.Color("#FFFFFF")
)

// CategoryChip renders a category label on its registry color.
func CategoryChip(entry model.CategoryEntry) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(entry.ColorToken)).
		Foreground(chipTextColor).
		Padding(0, 1).
		Render(entry.DisplayLabel)
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, "  "))
}

// ApplyColorProfile picks the lipgloss color profile for UI and CLI output.
// NO_COLOR or noColor strips all styling; otherwise the terminal decides,
// upgraded to 256 colors when TERM advertises it.
func ApplyColorProfile(noColor bool) {
	if noColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "256color") && profile == termenv.ANSI {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}
