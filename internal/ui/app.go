package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/circle/internal/logtail"
	"github.com/five82/circle/internal/prefs"
	"github.com/five82/circle/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewInvitations View = iota
	ViewMembers
	ViewLibrary
	ViewLogs
)

var viewOrder = []View{ViewInvitations, ViewMembers, ViewLibrary, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewMembers:
		return "Members"
	case ViewLibrary:
		return "Following"
	case ViewLogs:
		return "Log"
	default:
		return "Invitations"
	}
}

const logFetchLimit = 500

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *session.Session
	LogPath   string
	Tick      time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	sess      *session.Session
	logPath   string
	prefsPath string
	prefs     prefs.Prefs
	tick      time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	selected    map[View]int

	// Data state
	snapshot    session.Snapshot
	logs        []logtail.Entry
	lastUpdated time.Time
	status      string
	statusErr   bool

	// Slug prompt
	prompting bool
	slugInput textinput.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "community-slug"
	input.CharLimit = 64
	input.Prompt = "slug: "

	return Model{
		ctx:         ctx,
		sess:        opts.Session,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		prefs:       opts.Prefs,
		tick:        tick,
		theme:       GetTheme(opts.Prefs.Theme),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewInvitations,
		selected:    make(map[View]int),
		slugInput:   input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.sess != nil {
		cmds = append(cmds, snapshotCmd(m.sess))
		if slug := m.prefs.LastCommunity; slug != "" {
			cmds = append(cmds, openCommunityCmd(m.ctx, m.sess, slug))
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.sess != nil {
			cmds = append(cmds, snapshotCmd(m.sess))
		}
		if m.currentView == ViewLogs {
			cmds = append(cmds, logsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = session.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, nil

	case logsMsg:
		m.logs = msg
		m.clampSelection()
		return m, nil

	case actionDoneMsg:
		m.setStatus(msg.label, msg.err)
		return m, snapshotCmd(m.sess)

	case communityOpenedMsg:
		switch {
		case msg.err != nil:
			m.setStatus("open "+msg.slug, msg.err)
		case !msg.found:
			m.status, m.statusErr = "no community with slug "+msg.slug, true
		default:
			m.status, m.statusErr = "opened "+msg.slug, false
			m.currentView = ViewMembers
			m.prefs.LastCommunity = msg.slug
			_ = prefs.Save(m.prefsPath, m.prefs)
		}
		return m, snapshotCmd(m.sess)
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

func (m *Model) setStatus(label string, err error) {
	if err != nil {
		m.status, m.statusErr = label+": "+err.Error(), true
		return
	}
	m.status, m.statusErr = label+": done", false
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.prompting {
		return m.handlePromptKey(msg)
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
		_ = prefs.Save(m.prefsPath, m.prefs)
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.cycleView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.cycleView(-1))
	case key.Matches(msg, m.keys.ViewInvitations):
		return m.switchView(ViewInvitations)
	case key.Matches(msg, m.keys.ViewMembers):
		return m.switchView(ViewMembers)
	case key.Matches(msg, m.keys.ViewLibrary):
		return m.switchView(ViewLibrary)
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	case key.Matches(msg, m.keys.Refresh):
		m.status, m.statusErr = "refreshing", false
		return m, refreshCmd(m.ctx, m.sess)
	case key.Matches(msg, m.keys.OpenCommunity):
		m.prompting = true
		m.slugInput.SetValue("")
		return m, m.slugInput.Focus()
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selected[m.currentView] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selected[m.currentView] = m.rowCount() - 1
		m.clampSelection()
		return m, nil
	}
	return m.handleActionKey(msg)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompting = false
		m.slugInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.prompting = false
		m.slugInput.Blur()
		slug := strings.TrimSpace(m.slugInput.Value())
		if slug == "" {
			return m, nil
		}
		m.status, m.statusErr = "opening "+slug, false
		return m, openCommunityCmd(m.ctx, m.sess, slug)
	}
	var cmd tea.Cmd
	m.slugInput, cmd = m.slugInput.Update(msg)
	return m, cmd
}

// handleActionKey maps action keys onto the selected row of the current view.
func (m Model) handleActionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	switch m.currentView {
	case ViewInvitations:
		inv, ok := m.selectedInvitation()
		if !ok {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Accept):
			return m, acceptCmd(m.ctx, m.sess, inv)
		case key.Matches(msg, m.keys.Decline):
			return m, declineCmd(m.ctx, m.sess, inv)
		}
	case ViewMembers:
		if !key.Matches(msg, m.keys.Kick) {
			return m, nil
		}
		if member, ok := m.selectedMember(); ok {
			return m, kickCmd(m.ctx, m.sess, member)
		}
	case ViewLibrary:
		if !key.Matches(msg, m.keys.Unfollow) {
			return m, nil
		}
		if entry, ok := m.selectedEntry(); ok {
			return m, unfollowCmd(m.ctx, m.sess, entry)
		}
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewLogs {
		return m, logsCmd(m.logPath)
	}
	return m, nil
}

func (m Model) cycleView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewInvitations
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
