package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/hireboard/internal/domain"
)

func (m Model) focusedStage() domain.Stage {
	stage := domain.Stage(m.prefs.Candidates.Stage)
	if domain.StageIndex(stage) < 0 {
		return domain.StageApplied
	}
	return stage
}

// stageCandidates lists candidates in stage, narrowed by the selected job
// and the saved search.
func (m Model) stageCandidates(stage domain.Stage) []domain.Candidate {
	jobID := m.prefs.Candidates.JobID
	needle := strings.ToLower(strings.TrimSpace(m.prefs.Candidates.Search))
	var out []domain.Candidate
	for _, c := range m.snapshot.Candidates {
		if c.Stage != stage {
			continue
		}
		if jobID != "" && c.JobID != jobID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(c.Email, needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m Model) selectedCandidate() (domain.Candidate, bool) {
	cands := m.stageCandidates(m.focusedStage())
	if m.candidateRow < 0 || m.candidateRow >= len(cands) {
		return domain.Candidate{}, false
	}
	return cands[m.candidateRow], true
}

// handlePipelineKey processes keyboard input for the candidate pipeline.
func (m Model) handlePipelineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.stageCandidates(m.focusedStage()))

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.candidateRow < count-1 {
			m.candidateRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.candidateRow > 0 {
			m.candidateRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.candidateRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.candidateRow = clampIndex(count-1, count)

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		delta := 1
		if key.Matches(msg, m.keys.Left) {
			delta = -1
		}
		m.prefs.Candidates.Stage = string(domain.NextStage(m.focusedStage(), delta))
		m.candidateRow = 0
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Advance), key.Matches(msg, m.keys.Regress):
		cand, ok := m.selectedCandidate()
		if !ok || m.engine == nil {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, m.keys.Regress) {
			delta = -1
		}
		next := domain.NextStage(cand.Stage, delta)
		if next == cand.Stage {
			return m, nil
		}
		return m, m.moveCandidateCmd(cand.ID, next)

	case key.Matches(msg, m.keys.Note):
		if _, ok := m.selectedCandidate(); !ok || m.engine == nil {
			return m, nil
		}
		cmd := m.openInput(inputNote, "Note: ", "")
		return m, cmd

	case key.Matches(msg, m.keys.Timeline):
		m.prefs = m.prefs.TogglePanel(panelTimeline)
		cmds := []tea.Cmd{m.savePrefs()}
		if cand, ok := m.selectedCandidate(); ok && m.prefs.PanelOpen(panelTimeline) && m.engine != nil {
			cmds = append(cmds, m.timelineCmd(cand.ID))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Search):
		cmd := m.openInput(inputSearch, "/", m.prefs.Candidates.Search)
		return m, cmd
	}

	return m, nil
}

// renderPipeline renders one column per stage.
func (m Model) renderPipeline() string {
	styles := m.theme.Styles()

	var b strings.Builder
	title := "Pipeline"
	if jobID := m.prefs.Candidates.JobID; jobID != "" {
		title += "  " + m.jobTitle(jobID)
	}
	if m.prefs.Candidates.Search != "" {
		title += fmt.Sprintf("  /%s", m.prefs.Candidates.Search)
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n")

	colWidth := max(14, (m.width-len(domain.Stages)*4)/len(domain.Stages))
	focused := m.focusedStage()
	columns := make([]string, 0, len(domain.Stages))
	for _, stage := range domain.Stages {
		cands := m.stageCandidates(stage)
		var col strings.Builder
		col.WriteString(styles.StatusStyle(string(stage)).Render(fmt.Sprintf("%s %d", stage, len(cands))))
		col.WriteString("\n")
		for i, c := range cands {
			name := padRight(truncate(c.Name, colWidth), colWidth)
			if stage == focused && i == m.candidateRow {
				col.WriteString(styles.Selected.Render(name))
			} else {
				col.WriteString(styles.Text.Render(name))
			}
			col.WriteString("\n")
		}
		style := styles.Column
		if stage == focused {
			style = styles.FocusedColumn
		}
		columns = append(columns, style.Width(colWidth).Render(strings.TrimRight(col.String(), "\n")))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))

	if m.prefs.PanelOpen(panelTimeline) {
		b.WriteString("\n")
		b.WriteString(m.renderTimeline())
	}
	return b.String()
}

func (m Model) renderTimeline() string {
	styles := m.theme.Styles()
	cand, ok := m.selectedCandidate()
	if !ok {
		return styles.MutedText.Render("No candidate selected.")
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Render(fmt.Sprintf("Timeline: %s <%s>", cand.Name, cand.Email)))
	b.WriteString("\n")
	events := m.snapshot.Timelines[cand.ID]
	if len(events) == 0 {
		b.WriteString(styles.MutedText.Render("  no events"))
		return b.String()
	}
	for _, ev := range events {
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render(formatTimestamp(ev.CreatedAt.Time)))
		b.WriteString("  ")
		b.WriteString(styles.Text.Render(describeEvent(ev)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeEvent(ev domain.TimelineEvent) string {
	switch ev.Kind {
	case domain.TimelineStageChange:
		return fmt.Sprintf("%s -> %s", ev.FromStage, ev.ToStage)
	case domain.TimelineNote:
		return "note: " + ev.Note
	case domain.TimelineAssessment:
		return "assessment submitted"
	default:
		return string(ev.Kind)
	}
}

func (m Model) jobTitle(id string) string {
	for _, job := range m.snapshot.Jobs {
		if job.ID == id {
			return job.Title
		}
	}
	return id
}
