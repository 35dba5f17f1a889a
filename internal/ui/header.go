package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var viewNames = map[View]string{
	ViewJobs:        "Jobs",
	ViewPipeline:    "Pipeline",
	ViewAssessments: "Assessments",
	ViewLogs:        "Logs",
}

// renderHeader renders the title, view tabs and connectivity status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, viewNames[v])
		if v == m.currentView {
			tabs = append(tabs, styles.AccentText.Bold(true).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}

	left := styles.WarningText.Bold(true).Render("hireboard") + "  " + strings.Join(tabs, "  ")
	right := m.renderStatus()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderStatus summarizes connectivity, pending work and the breaker.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	var parts []string

	if snap.Busy() {
		parts = append(parts, m.spinner.View()+styles.InfoText.Render(strings.Join(busyOps(snap.Loading), ",")))
	}
	if snap.Pending > 0 {
		parts = append(parts, styles.WarningText.Render(fmt.Sprintf("%d pending", snap.Pending)))
	}
	if m.breaker != nil {
		if st := m.breaker(); st.Enabled && st.State != "closed" {
			parts = append(parts, styles.DangerText.Render("breaker "+st.State))
		}
	}
	switch {
	case snap.IsOffline():
		parts = append(parts, styles.DangerText.Render("offline"))
	case !snap.LastSynced.IsZero():
		parts = append(parts, styles.SuccessText.Render("online"),
			styles.FaintText.Render("synced "+humanizeDuration(time.Since(snap.LastSynced))+" ago"))
	default:
		parts = append(parts, styles.MutedText.Render("not synced"))
	}
	return strings.Join(parts, "  ")
}

// renderFooter renders the prompt when open, otherwise the last outcome,
// the first recorded error and short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.inputMode != inputNone {
		return styles.Footer.Width(m.width).Render(m.input.View())
	}

	var parts []string
	if m.flash != "" {
		if m.flashErr {
			parts = append(parts, styles.DangerText.Render(m.flash))
		} else {
			parts = append(parts, styles.SuccessText.Render(m.flash))
		}
	}
	if op, msg := firstError(m.snapshot.Errors); op != "" && !m.flashErr {
		parts = append(parts, styles.DangerText.Render(op+": "+msg))
	}
	parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	return styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

func busyOps(loading map[string]bool) []string {
	var ops []string
	for op, on := range loading {
		if on {
			ops = append(ops, op)
		}
	}
	sort.Strings(ops)
	return ops
}

// firstError returns the alphabetically first operation with a non-empty
// error so the footer is stable between renders.
func firstError(errs map[string]string) (string, string) {
	ops := make([]string, 0, len(errs))
	for op, msg := range errs {
		if msg != "" {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return "", ""
	}
	sort.Strings(ops)
	return ops[0], errs[ops[0]]
}
