package components

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#273540")).
			Padding(1, 2).
			Width(48)

	dialogHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7f57b4")).
				Bold(true)

	dialogMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ba0bf"))
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	header := dialogHeaderStyle.Render(title)
	body := dialogMutedStyle.Render(SanitizeText(message))
	hint := dialogMutedStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(header + "\n\n" + body + hint)
}

// InputDialog renders an already rendered input field under a title.
func InputDialog(title, field, hint string) string {
	header := dialogHeaderStyle.Render(title)
	if hint == "" {
		hint = "enter: submit | esc: cancel"
	}
	return dialogStyle.Render(header + "\n\n" + field + "\n" + dialogMutedStyle.Render(hint))
}

// PasteDialog renders a multi-line paste area sized to the terminal.
func PasteDialog(title, area, hint string, width int) string {
	body := area + "\n\n" + dialogMutedStyle.Render(hint)
	return TitledBox(title, body, width)
}
