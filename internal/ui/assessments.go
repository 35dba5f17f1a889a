package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hireboard/internal/domain"
)

// visibleAssessments lists assessments for the selected job, or all of them
// when no job is selected.
func (m Model) visibleAssessments() []domain.Assessment {
	jobID := m.prefs.Candidates.JobID
	var out []domain.Assessment
	for _, a := range m.snapshot.Assessments {
		if jobID == "" || a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out
}

// handleAssessmentsKey moves the builder selection and expands sections.
func (m Model) handleAssessmentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.visibleAssessments()
	if len(list) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.assessmentRow < len(list)-1 {
			m.assessmentRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.assessmentRow > 0 {
			m.assessmentRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.assessmentRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.assessmentRow = len(list) - 1

	case key.Matches(msg, m.keys.Open):
		id := list[m.assessmentRow].ID
		if i := slices.Index(m.prefs.Builder.Expanded, id); i >= 0 {
			m.prefs.Builder.Expanded = slices.Delete(slices.Clone(m.prefs.Builder.Expanded), i, i+1)
		} else {
			m.prefs.Builder.Expanded = append(slices.Clone(m.prefs.Builder.Expanded), id)
		}

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		sections := list[m.assessmentRow].Sections
		if len(sections) == 0 {
			return m, nil
		}
		idx := slices.IndexFunc(sections, func(s domain.Section) bool { return s.ID == m.prefs.Builder.SectionID })
		if key.Matches(msg, m.keys.Left) {
			idx--
		} else {
			idx++
		}
		m.prefs.Builder.SectionID = sections[clampIndex(idx, len(sections))].ID

	default:
		return m, nil
	}

	selected := list[m.assessmentRow].ID
	if m.prefs.Builder.AssessmentID != selected {
		m.prefs.Builder.AssessmentID = selected
		m.prefs.Builder.SectionID = ""
	}
	return m, m.savePrefs()
}

// renderAssessments renders the assessment list with expanded sections.
func (m Model) renderAssessments() string {
	styles := m.theme.Styles()
	list := m.visibleAssessments()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Assessments"))
	b.WriteString("\n\n")
	if len(list) == 0 {
		b.WriteString(styles.MutedText.Render("No assessments for this job."))
		return b.String()
	}

	for i, a := range list {
		questions := 0
		for _, s := range a.Sections {
			questions += len(s.Questions)
		}
		line := fmt.Sprintf("%s  (%d sections, %d questions)", a.Title, len(a.Sections), questions)
		if i == m.assessmentRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")

		if !slices.Contains(m.prefs.Builder.Expanded, a.ID) {
			continue
		}
		for _, s := range a.Sections {
			marker := "  "
			style := styles.MutedText
			if a.ID == m.prefs.Builder.AssessmentID && s.ID == m.prefs.Builder.SectionID {
				marker = "> "
				style = styles.AccentText
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s%s", marker, s.Title)))
			b.WriteString("\n")
			for _, q := range s.Questions {
				b.WriteString(styles.FaintText.Render(fmt.Sprintf("      [%s] %s", q.Type, truncate(q.Prompt, max(20, m.width-20)))))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
