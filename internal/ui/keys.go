package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the board.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Sync       key.Binding
	Escape     key.Binding

	// View switching
	ViewJobs        key.Binding
	ViewPipeline    key.Binding
	ViewAssessments key.Binding
	ViewLogs        key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Jobs
	NewJob      key.Binding
	Archive     key.Binding
	Delete      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	CycleFilter key.Binding
	Search      key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Open        key.Binding

	// Pipeline
	Advance  key.Binding
	Regress  key.Binding
	Note     key.Binding
	Timeline key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		Sync: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Sync with API"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel / back to jobs"),
		),

		ViewJobs: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Jobs"),
		),
		ViewPipeline: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Pipeline"),
		),
		ViewAssessments: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Assessments"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous stage"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next stage"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		NewJob: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New job"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Archive / restore"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete job"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move job up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move job down"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / expand"),
		),

		Advance: key.NewBinding(
			key.WithKeys(">", "."),
			key.WithHelp(">", "Advance stage"),
		),
		Regress: key.NewBinding(
			key.WithKeys("<", ","),
			key.WithHelp("<", "Move back a stage"),
		),
		Note: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Add note"),
		),
		Timeline: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Toggle timeline"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Sync, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewJobs, k.ViewPipeline, k.ViewAssessments, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom},
		{k.NewJob, k.Archive, k.Delete, k.MoveUp, k.MoveDown, k.Open},
		{k.CycleFilter, k.Search, k.PrevPage, k.NextPage},
		{k.Advance, k.Regress, k.Note, k.Timeline},
		{k.Sync, k.CycleTheme, k.Help, k.Quit},
	}
}
