package ui

import "github.com/charmbracelet/lipgloss"

// renderHelp draws the full key map in a centered box.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	full := m.help
	full.ShowAll = true
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.AccentText.Bold(true).Render("hireboard keys"),
		"",
		full.FullHelpView(m.keys.FullHelp()),
		"",
		styles.FaintText.Render("any key closes this"),
	)

	box := styles.Column.
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
