package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/logtail"
	"github.com/five82/hireboard/internal/prefs"
	"github.com/five82/hireboard/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// changeMsg reports that the state container changed.
type changeMsg struct{}

// opDoneMsg carries the outcome of an engine call. The optimistic change is
// already visible; this only drives the status line.
type opDoneMsg struct {
	label string
	err   error
}

type prefsSavedMsg struct{ err error }

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func (m Model) savePrefs() tea.Cmd {
	path, p := m.prefsPath, m.prefs
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines, logrus.InfoLevel)
		return logsMsg{entries: entries, err: err}
	}
}

func (m Model) syncCmd() tea.Cmd {
	if m.syncer == nil {
		return nil
	}
	ctx, syncer := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{label: "synced", err: syncer.SyncWithAPI(ctx)}
	}
}

func (m Model) createJobCmd(title string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		job, err := engine.CreateJob(ctx, domain.NewJob{Title: title})
		if err != nil {
			return opDoneMsg{label: "create job", err: err}
		}
		return opDoneMsg{label: "created " + job.Title}
	}
}

func (m Model) updateJobCmd(id string, patch domain.JobPatch, label string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		_, err := engine.UpdateJob(ctx, id, patch)
		return opDoneMsg{label: label, err: err}
	}
}

func (m Model) deleteJobCmd(id string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		return opDoneMsg{label: "deleted job", err: engine.DeleteJob(ctx, id)}
	}
}

func (m Model) reorderJobsCmd(from, to int) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		return opDoneMsg{label: "reordered jobs", err: engine.ReorderJobs(ctx, from, to)}
	}
}

func (m Model) moveCandidateCmd(id string, stage domain.Stage) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		_, err := engine.MoveCandidate(ctx, id, stage)
		return opDoneMsg{label: "moved to " + string(stage), err: err}
	}
}

func (m Model) addNoteCmd(candidateID, body string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		_, err := engine.AddNote(ctx, candidateID, body)
		return opDoneMsg{label: "note added", err: err}
	}
}

func (m Model) timelineCmd(candidateID string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		_, err := engine.Timeline(ctx, candidateID)
		return opDoneMsg{label: "timeline loaded", err: err}
	}
}
