package ui

import "github.com/charmbracelet/lipgloss"

// Theme is a named palette. Badge colors for stages and job statuses are
// derived from its semantic roles, so a palette never lists them itself.
type Theme struct {
	Name string

	Background string
	Surface    string
	Selection  string
	Border     string

	Text  string
	Muted string
	Faint string

	Accent    string // focus, tabs, the current tech stage
	Highlight string // offers
	Success   string
	Warning   string
	Danger    string
	Info      string
}

// StatusColor maps a pipeline stage or job status onto the palette.
func (t Theme) StatusColor(status string) string {
	switch status {
	case "applied", "archived":
		return t.Faint
	case "screen":
		return t.Info
	case "tech":
		return t.Accent
	case "offer":
		return t.Highlight
	case "hired", "active":
		return t.Success
	case "rejected":
		return t.Danger
	}
	return t.Muted
}

// Styles holds the lipgloss styles the views render with.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header        lipgloss.Style
	Footer        lipgloss.Style
	Selected      lipgloss.Style
	Column        lipgloss.Style
	FocusedColumn lipgloss.Style

	theme Theme
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	column := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   bar.Foreground(lipgloss.Color(t.Text)),
		Footer:   bar.Foreground(lipgloss.Color(t.Muted)),
		Selected: fg(t.Text).Background(lipgloss.Color(t.Selection)),

		Column:        column.BorderForeground(lipgloss.Color(t.Border)),
		FocusedColumn: column.BorderForeground(lipgloss.Color(t.Accent)),

		theme: t,
	}
}

// StatusStyle returns a badge for a stage or job status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(s.theme.StatusColor(status))).
		Padding(0, 1)
}

var themes = []Theme{
	{
		Name:       "Nightfox",
		Background: "#131a24", Surface: "#192330", Selection: "#2b3b51", Border: "#39506d",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b",
		Accent: "#719cd6", Highlight: "#9d79d6",
		Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d", Info: "#63cdcf",
	},
	{
		Name:       "Gruvbox",
		Background: "#1d2021", Surface: "#282828", Selection: "#504945", Border: "#665c54",
		Text: "#ebdbb2", Muted: "#a89984", Faint: "#7c6f64",
		Accent: "#83a598", Highlight: "#d3869b",
		Success: "#b8bb26", Warning: "#fabd2f", Danger: "#fb4934", Info: "#8ec07c",
	},
	{
		Name:       "Paper",
		Background: "#fafafa", Surface: "#eeeeee", Selection: "#d0e4f5", Border: "#bdbdbd",
		Text: "#212121", Muted: "#616161", Faint: "#9e9e9e",
		Accent: "#1565c0", Highlight: "#6a1b9a",
		Success: "#2e7d32", Warning: "#ef6c00", Danger: "#c62828", Info: "#00838f",
	},
}

// GetTheme returns the named theme, or the first one when unknown.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames lists the themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
