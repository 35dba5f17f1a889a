package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/logtail"
	"github.com/five82/hireboard/internal/prefs"
	"github.com/five82/hireboard/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewJobs View = iota
	ViewPipeline
	ViewAssessments
	ViewLogs
)

var viewOrder = []View{ViewJobs, ViewPipeline, ViewAssessments, ViewLogs}

// inputMode is what the prompt line is collecting, if anything.
type inputMode int

const (
	inputNone inputMode = iota
	inputNewJob
	inputNote
	inputSearch
)

const (
	panelTimeline = "timeline"

	defaultUITick = time.Second
	logTailLines  = 500
)

// Mutator is the slice of the mutation engine the board drives.
type Mutator interface {
	CreateJob(ctx context.Context, in domain.NewJob) (domain.Job, error)
	UpdateJob(ctx context.Context, id string, patch domain.JobPatch) (domain.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ReorderJobs(ctx context.Context, from, to int) error
	MoveCandidate(ctx context.Context, id string, stage domain.Stage) (domain.Candidate, error)
	AddNote(ctx context.Context, candidateID, body string) (domain.Note, error)
	Timeline(ctx context.Context, candidateID string) ([]domain.TimelineEvent, error)
}

// Syncer refreshes the board from the API.
type Syncer interface {
	SyncWithAPI(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Engine     Mutator
	Reconciler Syncer
	Store      *state.Store
	Breaker    func() api.BreakerStatus
	Prefs      prefs.Prefs
	PrefsPath  string
	LogPath    string
	Tick       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	engine    Mutator
	syncer    Syncer
	store     *state.Store
	breaker   func() api.BreakerStatus
	prefsPath string
	logPath   string
	tick      time.Duration
	changes   <-chan struct{}

	// UI state
	prefs       prefs.Prefs
	theme       Theme
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	input       textinput.Model
	inputMode   inputMode
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	flash       string
	flashErr    bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	logEntries  []logtail.Entry

	// Cursors
	jobRow        int
	candidateRow  int
	assessmentRow int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultUITick
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	in := textinput.New()
	in.CharLimit = 500

	m := Model{
		ctx:       ctx,
		engine:    opts.Engine,
		syncer:    opts.Reconciler,
		store:     opts.Store,
		breaker:   opts.Breaker,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		tick:      tick,
		prefs:     opts.Prefs,
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		input:     in,
	}
	if opts.Store != nil {
		m.changes, _ = opts.Store.Subscribe()
		m.snapshot = opts.Store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store), waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case changeMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), waitForChange(m.changes))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampCursors()
		return m, nil

	case opDoneMsg:
		m.setFlash(msg.label, msg.err)
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.setFlash("save prefs", msg.err)
		}
		return m, nil

	case logsMsg:
		if msg.err == nil {
			m.logEntries = msg.entries
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input outside the prompt.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.Tab):
		m.currentView = nextView(m.currentView)
		return m, m.enterView()

	case key.Matches(msg, m.keys.Sync):
		return m, m.syncCmd()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewJobs
		return m, nil

	case key.Matches(msg, m.keys.ViewJobs):
		m.currentView = ViewJobs
		return m, nil

	case key.Matches(msg, m.keys.ViewPipeline):
		m.currentView = ViewPipeline
		return m, nil

	case key.Matches(msg, m.keys.ViewAssessments):
		m.currentView = ViewAssessments
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, m.refreshLogs()
	}

	// View-specific keys
	switch m.currentView {
	case ViewJobs:
		return m.handleJobsKey(msg)
	case ViewPipeline:
		return m.handlePipelineKey(msg)
	case ViewAssessments:
		return m.handleAssessmentsKey(msg)
	}
	return m, nil
}

// handleInputKey feeds the prompt and submits it on enter.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.inputMode
		m.closeInput()
		return m.submitInput(mode, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openInput(mode inputMode, prompt, value string) tea.Cmd {
	m.inputMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.inputMode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) submitInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case inputNewJob:
		if value == "" {
			return m, nil
		}
		return m, m.createJobCmd(value)

	case inputNote:
		cand, ok := m.selectedCandidate()
		if !ok || value == "" {
			return m, nil
		}
		return m, m.addNoteCmd(cand.ID, value)

	case inputSearch:
		if m.currentView == ViewPipeline {
			m.prefs.Candidates.Search = value
		} else {
			m.prefs.Jobs.Search = value
			m.prefs.Page.Number = 1
		}
		m.clampCursors()
		return m, m.savePrefs()
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, m.refreshLogs())
	}
	return m, tea.Batch(cmds...)
}

// enterView fetches whatever the newly focused view needs.
func (m Model) enterView() tea.Cmd {
	if m.currentView == ViewLogs {
		return m.refreshLogs()
	}
	return nil
}

func (m *Model) setFlash(label string, err error) {
	if err != nil {
		m.flash = label + ": " + api.Message(err)
		m.flashErr = true
		return
	}
	m.flash = label
	m.flashErr = false
}

func (m *Model) clampCursors() {
	m.jobRow = clampIndex(m.jobRow, len(m.visibleJobs()))
	m.candidateRow = clampIndex(m.candidateRow, len(m.stageCandidates(m.focusedStage())))
	m.assessmentRow = clampIndex(m.assessmentRow, len(m.visibleAssessments()))
}

func nextView(v View) View {
	for i, view := range viewOrder {
		if view == v {
			return viewOrder[(i+1)%len(viewOrder)]
		}
	}
	return ViewJobs
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewJobs:
		return m.renderJobs()
	case ViewPipeline:
		return m.renderPipeline()
	case ViewAssessments:
		return m.renderAssessments()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
