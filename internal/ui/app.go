package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// inputMode is what currently receives key presses
type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeMenu
	modeConfirm
	modeForm
)

// Options configures a new Model
type Options struct {
	Config        *config.Config
	ConfigManager *config.ConfigManager
	Service       TaskService
	Logger        logrus.FieldLogger
	Context       context.Context

	// InitialView overrides both the saved state and the configured default
	InitialView string
}

// Model represents the TUI application state
type Model struct {
	// Services
	ctx           context.Context
	config        *config.Config
	configManager *config.ConfigManager
	service       TaskService
	log           logrus.FieldLogger

	// Task data, recomputed from the service after every change
	visible    []tasks.Task
	cursor     int
	selectedID string
	profile    tasks.UserProfile

	// Input state
	mode        inputMode
	menu        actionMenu
	confirm     *ConfirmDialogModel
	form        *TaskFormModel
	searchInput textinput.Model

	// Layout
	width  int
	height int
	ready  bool

	// Panels
	listViewport viewport.Model
	logViewport  viewport.Model
	helpModel    help.Model
	keyMap       KeyMap
	spinner      spinner.Model

	// Panel visibility
	showSidebar  bool
	showLogPanel bool
	showHelp     bool

	// Requests in flight
	inFlight int
	spinning bool

	// Status bar message
	flash    string
	flashErr *AppError
	flashSeq int

	// Error from the last fetch, shown in place of the list
	loadErr *AppError

	styles   *Styles
	logLines []string
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil && opts.ConfigManager != nil {
		cfg = opts.ConfigManager.GetConfig()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "title, location, category or tag"
	searchInput.Prompt = ""
	searchInput.CharLimit = 100
	searchInput.Width = 40

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHighlight))

	m := Model{
		ctx:           ctx,
		config:        cfg,
		configManager: opts.ConfigManager,
		service:       opts.Service,
		log:           logger,
		listViewport:  viewport.New(0, 0),
		logViewport:   viewport.New(0, 0),
		helpModel:     help.New(),
		keyMap:        NewKeyMap(cfg),
		spinner:       spin,
		searchInput:   searchInput,
		showSidebar:   cfg.UI.SidebarVisible(),
		styles:        NewStyles(cfg.Theme),
		logLines:      []string{},
	}

	// The saved state wins over the configured default, the flag wins over both
	selector := m.service.Selector()
	if cfg.UI.DefaultView != "" {
		selector.SetView(tasks.ParseView(cfg.UI.DefaultView))
	}
	if cfg.StatePath != "" {
		if state, err := config.LoadState(cfg.StatePath); err == nil {
			m.restoreUIState(state)
		} else {
			m.log.WithError(err).Warn("could not load UI state")
		}
	}
	if opts.InitialView != "" {
		selector.SetView(tasks.ParseView(opts.InitialView))
	}

	m.refreshVisible()
	return m
}

// Init starts the first fetch and the background listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadTasksCmd(m.ctx, m.service),
		LoadProfileCmd(m.ctx, m.service),
		WaitForTasksReload(m.service),
		WaitForConfigReload(m.configManager),
		m.spinner.Tick,
	)
}

// extractUIState captures what is restored on the next start
func (m *Model) extractUIState() *config.UIState {
	selector := m.service.Selector()
	return &config.UIState{
		View:       selector.View().String(),
		Search:     selector.Search(),
		SelectedID: m.selectedID,
	}
}

// SaveUIState persists the current UI state to disk
func (m *Model) SaveUIState() error {
	if m.config == nil || m.config.StatePath == "" {
		return nil
	}
	return config.SaveState(m.config.StatePath, m.extractUIState())
}

// restoreUIState restores the view, the search term and the selection
func (m *Model) restoreUIState(state *config.UIState) {
	if state == nil {
		return
	}
	selector := m.service.Selector()
	if state.View != "" {
		selector.SetView(tasks.ParseView(state.View))
	}
	selector.SetSearch(state.Search)
	m.selectedID = state.SelectedID
}

// ClearUIState resets the UI to defaults and deletes the state file
func (m *Model) ClearUIState() error {
	if m.config != nil && m.config.StatePath != "" {
		if err := os.Remove(m.config.StatePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove state file: %w", err)
		}
	}

	view := tasks.InboxView()
	if m.config != nil && m.config.UI.DefaultView != "" {
		view = tasks.ParseView(m.config.UI.DefaultView)
	}
	selector := m.service.Selector()
	selector.SetView(view)
	selector.SetSearch("")
	m.searchInput.SetValue("")
	m.selectedID = ""
	m.cursor = 0
	m.showSidebar = m.config == nil || m.config.UI.SidebarVisible()
	m.showLogPanel = false

	m.refreshVisible()
	m.updateViewportSizes()
	return nil
}

// refreshVisible recomputes the displayed list and keeps the selection on
// the same task when it is still visible
func (m *Model) refreshVisible() {
	m.visible = m.service.Visible()

	found := false
	if m.selectedID != "" {
		for i, t := range m.visible {
			if t.ID == m.selectedID {
				m.cursor = i
				found = true
				break
			}
		}
	}
	if !found {
		if m.cursor >= len(m.visible) {
			m.cursor = len(m.visible) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.selectedID = ""
		if len(m.visible) > 0 {
			m.selectedID = m.visible[m.cursor].ID
		}
	}

	// The menu may have been closed underneath us by a view change or a delete
	menuOpen := m.service.Selector().MenuTaskID() != ""
	if m.mode == modeMenu && !menuOpen {
		m.mode = modeNormal
	}

	m.updateListViewport()
}

// selectedTask returns the highlighted task
func (m Model) selectedTask() (tasks.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return tasks.Task{}, false
	}
	return m.visible[m.cursor], true
}

// moveCursor moves the highlight by delta, clamped to the list
func (m *Model) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.selectedID = m.visible[m.cursor].ID
	m.updateListViewport()
}

// allViews lists the fixed views followed by every registered project
func (m Model) allViews() []tasks.View {
	views := tasks.FixedViews()
	return append(views, m.service.Registry().Views()...)
}

// setView switches the active view. The selector closes any open menu.
func (m *Model) setView(v tasks.View) {
	m.service.Selector().SetView(v)
	m.cursor = 0
	m.selectedID = ""
	m.mode = modeNormal
	m.refreshVisible()
	m.listViewport.GotoTop()
	m.addLogLine(fmt.Sprintf("Showing %s", v.Title(m.service.Registry())))
}

// cycleView moves through allViews by delta, wrapping around
func (m *Model) cycleView(delta int) {
	views := m.allViews()
	current := m.service.Selector().View()
	idx := 0
	for i, v := range views {
		if v == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(views)) % len(views)
	m.setView(views[idx])
}

// nextProject jumps to the next project view, or the first one from a fixed view
func (m *Model) nextProject() {
	projects := m.service.Registry().Views()
	if len(projects) == 0 {
		m.setFlash("No projects configured")
		return
	}
	current := m.service.Selector().View()
	next := projects[0]
	for i, v := range projects {
		if v == current {
			next = projects[(i+1)%len(projects)]
			break
		}
	}
	m.setView(next)
}

// busy reports whether any request is outstanding
func (m Model) busy() bool {
	return m.inFlight > 0 || m.service.Fetching()
}

// startSpinner starts the tick loop unless it is already running
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// setFlash shows a status message for a few seconds
func (m *Model) setFlash(text string) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = nil
	return expireFlash(m.flashSeq)
}

// setFlashError shows an error in the status bar
func (m *Model) setFlashError(appErr *AppError) tea.Cmd {
	m.flashSeq++
	m.flash = ""
	m.flashErr = appErr
	return expireFlash(m.flashSeq)
}

// addLogLine adds a line to the log panel
func (m *Model) addLogLine(line string) {
	stamp := time.Now().Format("15:04:05")
	m.logLines = append(m.logLines, m.styles.Subtle.Render(stamp)+" "+line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.updateLogViewport()
}

// renderLog renders the log panel content
func (m Model) renderLog() string {
	if len(m.logLines) == 0 {
		return m.styles.Info.Render("No activity yet")
	}
	return strings.Join(m.logLines, "\n")
}

// updateLogViewport updates the log viewport content
func (m *Model) updateLogViewport() {
	m.logViewport.SetContent(m.renderLog())
	m.logViewport.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.confirm != nil {
			m.confirm.Update(msg)
		}
		m.updateViewportSizes()
		return m, nil

	case TasksLoadedMsg:
		m.applyLoadResult(msg.Err)
		return m, nil

	case TasksReloadedMsg:
		// The fetch outcome arrives with TasksLoadedMsg; only redraw here
		m.refreshVisible()
		return m, WaitForTasksReload(m.service)

	case ProfileLoadedMsg:
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("could not load user profile")
			m.addLogLine(fmt.Sprintf("Profile unavailable: %v", msg.Err))
			return m, nil
		}
		m.profile = msg.Profile
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(m.configManager.GetConfig())
		m.addLogLine("Configuration reloaded")
		return m, WaitForConfigReload(m.configManager)

	case WatcherErrorMsg:
		m.log.WithError(msg.Err).Warn("config watcher error")
		m.addLogLine(fmt.Sprintf("Watcher error: %v", msg.Err))
		cmd := m.setFlashError(NewOperationError("Config reload failed", msg.Err.Error(), msg.Err))
		return m, tea.Batch(cmd, WaitForConfigReload(m.configManager))

	case TaskCreatedMsg:
		m.finishRequest()
		m.selectedID = msg.Task.ID
		m.refreshVisible()
		m.addLogLine(fmt.Sprintf("Added %q", msg.Task.Title))
		return m, m.setFlash(fmt.Sprintf("Added %q", msg.Task.Title))

	case TaskUpdatedMsg:
		m.finishRequest()
		m.refreshVisible()
		text := fmt.Sprintf("Updated %q", msg.Task.Title)
		if msg.Op == "toggle" {
			if msg.Task.Completed {
				text = fmt.Sprintf("Completed %q", msg.Task.Title)
			} else {
				text = fmt.Sprintf("Reopened %q", msg.Task.Title)
			}
		}
		m.addLogLine(text)
		return m, m.setFlash(text)

	case TaskRemovedMsg:
		m.finishRequest()
		m.refreshVisible()
		m.addLogLine(fmt.Sprintf("Deleted %q", msg.Title))
		return m, m.setFlash(fmt.Sprintf("Deleted %q", msg.Title))

	case MutationFailedMsg:
		m.finishRequest()
		m.refreshVisible()
		if m.mode == modeNormal && m.service.Selector().MenuTaskID() != "" {
			m.mode = modeMenu
		}
		appErr := FromError(opTitle(msg.Op), msg.Err)
		m.log.WithError(msg.Err).WithFields(logrus.Fields{"op": msg.Op, "task": msg.TaskID}).Warn("mutation failed")
		m.addLogLine(fmt.Sprintf("%s: %v", appErr.Title, msg.Err))
		return m, m.setFlashError(appErr)

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		m.spinning = true
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateListViewport()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyLoadResult records the outcome of a fetch
func (m *Model) applyLoadResult(err error) {
	if err != nil {
		m.loadErr = FromError("Could not load tasks", err).WithRecoveryHints(
			"Press r to retry",
			"Check the server address (--base-url or "+config.EnvBaseURL+")",
		)
		m.addLogLine(fmt.Sprintf("Load failed: %v", err))
	} else {
		if m.loadErr != nil || len(m.logLines) == 0 {
			m.addLogLine(fmt.Sprintf("Loaded %d tasks", m.service.Store().Len()))
		}
		m.loadErr = nil
	}
	m.refreshVisible()
}

// finishRequest marks one mutation as done
func (m *Model) finishRequest() {
	if m.inFlight > 0 {
		m.inFlight--
	}
}

// applyConfig takes over a reloaded config. Projects are only ever added.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.config = cfg
	m.keyMap = NewKeyMap(cfg)
	m.styles = NewStyles(cfg.Theme)
	registry := m.service.Registry()
	for _, p := range cfg.Projects {
		_, known := registry.Get(p.ID)
		if registry.Register(tasks.Project{ID: p.ID, Name: p.Name}) && !known {
			m.addLogLine(fmt.Sprintf("Added project %s", p.Name))
		}
	}
	m.updateViewportSizes()
}

// handleKey routes a key press to the active input mode
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay takes priority
	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help) || key.Matches(msg, m.keyMap.Back) || key.Matches(msg, m.keyMap.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeMenu:
		return m.handleMenuKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit), key.Matches(msg, m.keyMap.Cancel):
		if err := m.SaveUIState(); err != nil {
			m.log.WithError(err).Warn("failed to save UI state")
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keyMap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keyMap.PageUp):
		m.moveCursor(-max(m.listViewport.Height/2, 1))
	case key.Matches(msg, m.keyMap.PageDown):
		m.moveCursor(max(m.listViewport.Height/2, 1))
	case key.Matches(msg, m.keyMap.Top):
		m.moveCursor(-len(m.visible))
	case key.Matches(msg, m.keyMap.Bottom):
		m.moveCursor(len(m.visible))

	case key.Matches(msg, m.keyMap.NextView):
		m.cycleView(1)
	case key.Matches(msg, m.keyMap.PrevView):
		m.cycleView(-1)
	case key.Matches(msg, m.keyMap.Inbox):
		m.setView(tasks.InboxView())
	case key.Matches(msg, m.keyMap.Today):
		m.setView(tasks.TodayView())
	case key.Matches(msg, m.keyMap.Upcoming):
		m.setView(tasks.UpcomingView())
	case key.Matches(msg, m.keyMap.Important):
		m.setView(tasks.ImportantView())
	case key.Matches(msg, m.keyMap.Completed):
		m.setView(tasks.CompletedView())
	case key.Matches(msg, m.keyMap.NextProject):
		m.nextProject()

	case key.Matches(msg, m.keyMap.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.service.Selector().Search())
		m.searchInput.CursorEnd()
		m.updateViewportSizes()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keyMap.Toggle):
		return m, m.toggleSelected()

	case key.Matches(msg, m.keyMap.ToggleImportant):
		return m, m.toggleImportantSelected()

	case key.Matches(msg, m.keyMap.Menu):
		if task, ok := m.selectedTask(); ok {
			m.service.Selector().OpenMenu(task.ID)
			m.menu = actionMenu{}
			m.mode = modeMenu
			m.updateListViewport()
		}

	case key.Matches(msg, m.keyMap.Delete):
		m.askDelete()

	case key.Matches(msg, m.keyMap.Add):
		project := m.service.Selector().View().ProjectID()
		m.form = NewTaskFormModel(m.service.Registry(), project)
		m.mode = modeForm

	case key.Matches(msg, m.keyMap.Refresh):
		m.addLogLine("Refreshing tasks...")
		return m, tea.Batch(LoadTasksCmd(m.ctx, m.service), m.startSpinner())

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.updateViewportSizes()
	case key.Matches(msg, m.keyMap.ToggleLog):
		m.showLogPanel = !m.showLogPanel
		m.updateViewportSizes()
		m.updateLogViewport()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true

	case key.Matches(msg, m.keyMap.Back):
		if m.service.Selector().Search() != "" {
			m.service.Selector().SetSearch("")
			m.searchInput.SetValue("")
			m.refreshVisible()
			m.updateViewportSizes()
			m.addLogLine("Search cleared")
		} else {
			m.flash = ""
			m.flashErr = nil
		}

	case key.Matches(msg, m.keyMap.ClearState):
		m.confirm = NewConfirmDialogModel("Reset view, search and panels to their defaults?", "Reset", "Cancel", m.width, m.height)
		m.mode = modeConfirm
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		m.searchInput.Blur()
		if term := m.service.Selector().Search(); term != "" {
			m.addLogLine(fmt.Sprintf("Found %d tasks matching %q", len(m.visible), term))
		}
		m.updateViewportSizes()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.service.Selector().SetSearch("")
		m.refreshVisible()
		m.updateViewportSizes()
		return m, nil
	case tea.KeyCtrlC:
		if err := m.SaveUIState(); err != nil {
			m.log.WithError(err).Warn("failed to save UI state")
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if term := m.searchInput.Value(); term != m.service.Selector().Search() {
		m.service.Selector().SetSearch(term)
		m.refreshVisible()
	}
	return m, cmd
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selector := m.service.Selector()
	task, ok := m.service.Store().Get(selector.MenuTaskID())
	if !ok {
		selector.CloseMenu()
		m.mode = modeNormal
		m.updateListViewport()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.menu.move(-1)
	case key.Matches(msg, m.keyMap.Down):
		m.menu.move(1)
	case key.Matches(msg, m.keyMap.Back), key.Matches(msg, m.keyMap.Quit):
		selector.CloseMenu()
		m.mode = modeNormal
	case key.Matches(msg, m.keyMap.Toggle):
		selector.CloseMenu()
		m.mode = modeNormal
		m.updateListViewport()
		return m, m.toggleSelected()
	case key.Matches(msg, m.keyMap.Delete):
		m.askDelete()
	case msg.Type == tea.KeyEnter:
		switch m.menu.selected() {
		case actionToggle:
			selector.CloseMenu()
			m.mode = modeNormal
			m.updateListViewport()
			return m, m.toggleTask(task)
		case actionImportant:
			selector.CloseMenu()
			m.mode = modeNormal
			m.updateListViewport()
			return m, m.setImportant(task, !task.Important)
		case actionDelete:
			m.askDelete()
		default:
			selector.CloseMenu()
			m.mode = modeNormal
		}
	}

	m.updateListViewport()
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.mode = modeNormal
		return m, nil
	}
	m.confirm.Update(msg)
	if !m.confirm.Done() {
		return m, nil
	}

	dialog := m.confirm
	m.confirm = nil
	m.mode = modeNormal
	selector := m.service.Selector()

	if dialog.TaskID() == "" {
		if !dialog.Result() {
			m.addLogLine("State reset cancelled")
			return m, nil
		}
		if err := m.ClearUIState(); err != nil {
			m.addLogLine(fmt.Sprintf("Failed to clear state: %v", err))
			return m, m.setFlashError(NewOperationError("Could not reset", err.Error(), err))
		}
		m.addLogLine("UI state cleared")
		return m, m.setFlash("UI state cleared")
	}

	if !dialog.Result() {
		if selector.MenuOpen(dialog.TaskID()) {
			m.mode = modeMenu
		}
		return m, nil
	}

	task, ok := m.service.Store().Get(dialog.TaskID())
	if !ok || !m.service.Begin(task.ID) {
		return m, nil
	}
	m.inFlight++
	m.addLogLine(fmt.Sprintf("Deleting %q...", task.Title))
	m.updateListViewport()
	return m, tea.Batch(RemoveTaskCmd(m.ctx, m.service, task.ID, task.Title), m.startSpinner())
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeNormal
		return m, nil
	}
	if msg.Type == tea.KeyCtrlC {
		if err := m.SaveUIState(); err != nil {
			m.log.WithError(err).Warn("failed to save UI state")
		}
		return m, tea.Quit
	}

	cmd := m.form.Update(msg)
	switch {
	case m.form.Cancelled():
		m.form = nil
		m.mode = modeNormal
		return m, nil
	case m.form.Submitted():
		draft, err := m.form.Draft()
		m.form = nil
		m.mode = modeNormal
		if err != nil {
			return m, m.setFlashError(FromError(opTitle("create"), err))
		}
		m.inFlight++
		m.addLogLine(fmt.Sprintf("Adding %q...", draft.Title))
		return m, tea.Batch(CreateTaskCmd(m.ctx, m.service, draft), m.startSpinner())
	}
	return m, cmd
}

// askDelete opens the delete confirmation for the highlighted or menu task
func (m *Model) askDelete() {
	id := m.service.Selector().MenuTaskID()
	if id == "" {
		task, ok := m.selectedTask()
		if !ok {
			return
		}
		id = task.ID
	}
	task, ok := m.service.Store().Get(id)
	if !ok || m.service.Pending(id) {
		return
	}
	m.confirm = NewConfirmDialogModel(fmt.Sprintf("Delete %q?", task.Title), "Delete", "Cancel", m.width, m.height).ForTask(id)
	m.mode = modeConfirm
}

// toggleSelected flips completion of the highlighted task
func (m *Model) toggleSelected() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok {
		return nil
	}
	return m.toggleTask(task)
}

func (m *Model) toggleTask(task tasks.Task) tea.Cmd {
	if !m.service.Begin(task.ID) {
		return nil
	}
	m.inFlight++
	m.updateListViewport()
	return tea.Batch(ToggleTaskCmd(m.ctx, m.service, task.ID), m.startSpinner())
}

// toggleImportantSelected flips the important flag of the highlighted task
func (m *Model) toggleImportantSelected() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok {
		return nil
	}
	return m.setImportant(task, !task.Important)
}

func (m *Model) setImportant(task tasks.Task, important bool) tea.Cmd {
	if !m.service.Begin(task.ID) {
		return nil
	}
	m.inFlight++
	m.updateListViewport()
	return tea.Batch(UpdateTaskCmd(m.ctx, m.service, task.ID, tasks.Patch{Important: &important}), m.startSpinner())
}

// renderTaskLine renders one row of the task list
func (m Model) renderTaskLine(task tasks.Task, selected bool) string {
	now := m.service.Now()

	icon := TaskIcon(task.Completed)
	if m.service.Pending(task.ID) {
		icon = m.spinner.View()
	}

	title := task.Title
	if task.Completed {
		title = m.styles.Done.Render(title)
	} else {
		title = m.styles.Open.Render(title)
	}

	var chips []string
	if task.Important {
		chips = append(chips, m.styles.Important.Render("★"))
	}
	if task.HasDueDate() {
		due := task.DueDate.In(now.Location())
		label := formatDue(due, now)
		if !task.Completed && due.Before(now) && !sameDate(due, now) {
			chips = append(chips, m.styles.Overdue.Render(label))
		} else {
			chips = append(chips, m.styles.Due.Render(label))
		}
	}
	for _, extra := range []string{task.Location, task.Category, task.Tag} {
		if extra != "" {
			chips = append(chips, m.styles.Chip.Render(extra))
		}
	}
	if task.Project != "" && !m.service.Selector().View().IsProject() {
		name := task.Project
		if p, ok := m.service.Registry().Get(task.Project); ok {
			name = p.Name
		}
		chips = append(chips, m.styles.Subtle.Render("#"+name))
	}

	line := fmt.Sprintf("%s %s", icon, title)
	if len(chips) > 0 {
		line += "  " + strings.Join(chips, " ")
	}

	if selected {
		return m.styles.TaskSelected.Render("› " + line)
	}
	return m.styles.TaskUnselected.Render("  " + line)
}

// formatDue renders a due date relative to now
func formatDue(due, now time.Time) string {
	switch {
	case sameDate(due, now):
		if due.Hour() == 0 && due.Minute() == 0 {
			return "today"
		}
		return "today " + due.Format("15:04")
	case sameDate(due, now.AddDate(0, 0, 1)):
		return "tomorrow"
	case due.Year() == now.Year():
		return due.Format("Jan 2")
	default:
		return due.Format("Jan 2 2006")
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// renderTaskList renders the list content placed in the list viewport.
// It returns the content and the line the cursor is on.
func (m Model) renderTaskList() (string, int) {
	switch {
	case !m.service.Loaded() && m.service.Fetching():
		return m.spinner.View() + " Loading tasks...", 0
	case m.loadErr != nil:
		var b strings.Builder
		b.WriteString(m.styles.Error.Render("✗ " + m.loadErr.Title))
		b.WriteString("\n\n")
		b.WriteString(m.loadErr.GetDisplayMessage())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Subtle.Render(m.loadErr.GetRecoveryMessage()))
		return b.String(), 0
	case len(m.visible) == 0:
		msg := "No tasks found."
		if term := m.service.Selector().Search(); term != "" {
			msg = fmt.Sprintf("No tasks found matching %q.", term)
		}
		hint := fmt.Sprintf("Press %s to add one.", m.keyMap.Add.Help().Key)
		return m.styles.Subtle.Render(msg + "\n\n" + hint), 0
	}

	menuID := m.service.Selector().MenuTaskID()
	var lines []string
	cursorLine := 0
	for i, task := range m.visible {
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderTaskLine(task, i == m.cursor))
		if task.ID == menuID {
			menu := m.menu.view(m.styles, task)
			for _, l := range strings.Split(menu, "\n") {
				lines = append(lines, "    "+l)
			}
		}
	}
	return strings.Join(lines, "\n"), cursorLine
}

// updateListViewport refreshes the list content and keeps the cursor in view
func (m *Model) updateListViewport() {
	content, cursorLine := m.renderTaskList()
	m.listViewport.SetContent(content)

	if m.listViewport.Height <= 0 {
		return
	}
	if cursorLine < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorLine - m.listViewport.Height + 1)
	}
}

func (m Model) View() string {
	if !m.ready {
		return m.styles.Info.Render("Starting tm-dash...")
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	if m.mode == modeConfirm && m.confirm != nil {
		return m.confirm.View()
	}

	if m.mode == modeForm && m.form != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.View(m.styles, m.width))
	}

	layout := m.calculateLayout()

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderMainContent(layout))
	if m.showLogPanel {
		sections = append(sections, m.renderLogPanel(layout))
	}
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMainContent renders the sidebar next to the task list
func (m Model) renderMainContent(layout LayoutDimensions) string {
	view := m.service.Selector().View()
	title := m.styles.PanelTitle.Render(view.Title(m.service.Registry()))
	todo := m.styles.Subtle.Render(fmt.Sprintf("To do (%d)", tasks.ToDoCount(m.visible)))

	list := m.styles.Panel.
		Width(layout.ListWidth - 2).
		Height(layout.ListHeight - 2).
		Render(title + "  " + todo + "\n" + m.listViewport.View())

	if layout.SidebarWidth == 0 {
		return list
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(layout), list)
}
