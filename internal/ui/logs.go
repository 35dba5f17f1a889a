package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/five82/hireboard/internal/logtail"
)

// renderLogs renders the tail of the app's own log file, newest last, sized
// to the terminal.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Logs"))
	if m.logPath != "" {
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render(truncateMiddle(m.logPath, 60)))
	}
	b.WriteString("\n\n")

	if len(m.logEntries) == 0 {
		b.WriteString(styles.MutedText.Render("No log entries."))
		return b.String()
	}

	rows := max(1, m.height-6)
	entries := m.logEntries
	if len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}
	for _, e := range entries {
		b.WriteString(m.formatLogEntry(e))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) formatLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, m.levelStyle(e.Level).Render(padRight(strings.ToUpper(levelLabel(e.Level)), 5)))
	if e.Component != "" {
		parts = append(parts, styles.InfoText.Render("["+e.Component+"]"))
	}
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != "" {
		msg += " (" + e.Err + ")"
	}
	parts = append(parts, styles.Text.Render(truncate(msg, max(20, m.width-30))))
	return strings.Join(parts, " ")
}

func (m Model) levelStyle(level logrus.Level) lipgloss.Style {
	styles := m.theme.Styles()
	switch {
	case level <= logrus.ErrorLevel:
		return styles.DangerText
	case level == logrus.WarnLevel:
		return styles.WarningText
	case level == logrus.InfoLevel:
		return styles.SuccessText
	default:
		return styles.MutedText
	}
}

func levelLabel(level logrus.Level) string {
	if level == logrus.WarnLevel {
		return "warn"
	}
	return level.String()
}
