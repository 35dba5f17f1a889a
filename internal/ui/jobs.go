package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hireboard/internal/domain"
)

// filteredJobs applies the saved status filter and search to every job.
func (m Model) filteredJobs() []domain.Job {
	status := domain.JobStatus(m.prefs.Jobs.Status)
	needle := strings.ToLower(strings.TrimSpace(m.prefs.Jobs.Search))
	out := make([]domain.Job, 0, len(m.snapshot.Jobs))
	for _, job := range m.snapshot.Jobs {
		if status != "" && job.Status != status {
			continue
		}
		if needle != "" && !jobMatches(job, needle) {
			continue
		}
		out = append(out, job)
	}
	return out
}

func jobMatches(job domain.Job, needle string) bool {
	if strings.Contains(strings.ToLower(job.Title), needle) || strings.Contains(job.Slug, needle) {
		return true
	}
	for _, tag := range job.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// visibleJobs is the current page of filteredJobs.
func (m Model) visibleJobs() []domain.Job {
	jobs, _ := paginate(m.filteredJobs(), m.prefs.Page.Number, m.prefs.Page.Size)
	return jobs
}

func (m Model) pageCount() int {
	_, pages := paginate(m.filteredJobs(), m.prefs.Page.Number, m.prefs.Page.Size)
	return pages
}

func (m Model) selectedJob() (domain.Job, bool) {
	jobs := m.visibleJobs()
	if m.jobRow < 0 || m.jobRow >= len(jobs) {
		return domain.Job{}, false
	}
	return jobs[m.jobRow], true
}

// handleJobsKey processes keyboard input for the jobs view.
func (m Model) handleJobsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.visibleJobs())

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.jobRow < count-1 {
			m.jobRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.jobRow > 0 {
			m.jobRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.jobRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.jobRow = clampIndex(count-1, count)

	case key.Matches(msg, m.keys.NewJob):
		cmd := m.openInput(inputNewJob, "New job title: ", "")
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		cmd := m.openInput(inputSearch, "/", m.prefs.Jobs.Search)
		return m, cmd

	case key.Matches(msg, m.keys.CycleFilter):
		m.prefs.Jobs.Status = nextStatusFilter(m.prefs.Jobs.Status)
		m.prefs.Page.Number = 1
		m.jobRow = 0
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.PrevPage):
		if m.prefs.Page.Number > 1 {
			m.prefs.Page.Number--
			m.jobRow = 0
			return m, m.savePrefs()
		}
	case key.Matches(msg, m.keys.NextPage):
		if m.prefs.Page.Number < m.pageCount() {
			m.prefs.Page.Number++
			m.jobRow = 0
			return m, m.savePrefs()
		}

	case key.Matches(msg, m.keys.Open):
		job, ok := m.selectedJob()
		if !ok {
			return m, nil
		}
		m.prefs.Candidates.JobID = job.ID
		m.candidateRow = 0
		m.currentView = ViewPipeline
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Archive):
		job, ok := m.selectedJob()
		if !ok || m.engine == nil {
			return m, nil
		}
		next, label := domain.JobArchived, "archived "+job.Title
		if job.Status == domain.JobArchived {
			next, label = domain.JobActive, "restored "+job.Title
		}
		return m, m.updateJobCmd(job.ID, domain.JobPatch{Status: &next}, label)

	case key.Matches(msg, m.keys.Delete):
		job, ok := m.selectedJob()
		if !ok || m.engine == nil {
			return m, nil
		}
		return m, m.deleteJobCmd(job.ID)

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		job, ok := m.selectedJob()
		if !ok || m.engine == nil {
			return m, nil
		}
		from := jobIndex(m.snapshot.Jobs, job.ID)
		to := from + 1
		if key.Matches(msg, m.keys.MoveUp) {
			to = from - 1
		}
		if from < 0 || to < 0 || to >= len(m.snapshot.Jobs) {
			return m, nil
		}
		if to < from && m.jobRow > 0 {
			m.jobRow--
		} else if to > from && m.jobRow < count-1 {
			m.jobRow++
		}
		return m, m.reorderJobsCmd(from, to)
	}

	return m, nil
}

func nextStatusFilter(current string) string {
	switch domain.JobStatus(current) {
	case "":
		return string(domain.JobActive)
	case domain.JobActive:
		return string(domain.JobArchived)
	default:
		return ""
	}
}

func jobIndex(jobs []domain.Job, id string) int {
	for i, job := range jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

// renderJobs renders the jobs table.
func (m Model) renderJobs() string {
	styles := m.theme.Styles()
	jobs := m.visibleJobs()

	var b strings.Builder
	filter := m.prefs.Jobs.Status
	if filter == "" {
		filter = "all"
	}
	title := fmt.Sprintf("Jobs  [%s]", filter)
	if m.prefs.Jobs.Search != "" {
		title += fmt.Sprintf("  /%s", m.prefs.Jobs.Search)
	}
	title += fmt.Sprintf("  page %d/%d", m.prefs.Page.Number, m.pageCount())
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")

	if len(jobs) == 0 {
		b.WriteString(styles.MutedText.Render("No jobs. Press n to add one."))
		return b.String()
	}

	counts := candidateCounts(m.snapshot.Candidates)
	titleWidth := max(20, m.width-48)
	for i, job := range jobs {
		line := fmt.Sprintf("%3d  %s  %s  %s",
			job.Order,
			padRight(truncate(job.Title, titleWidth), titleWidth),
			padRight(fmt.Sprintf("%d cand.", counts[job.ID]), 9),
			truncate(strings.Join(job.Tags, ", "), 20),
		)
		badge := styles.StatusStyle(string(job.Status)).Render(string(job.Status))
		if i == m.jobRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString(" ")
		b.WriteString(badge)
		b.WriteString("\n")
	}
	return b.String()
}

func candidateCounts(cands []domain.Candidate) map[string]int {
	counts := make(map[string]int)
	for _, c := range cands {
		counts[c.JobID]++
	}
	return counts
}
