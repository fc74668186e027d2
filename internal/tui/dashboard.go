package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/notify"
	"github.com/manav03panchal/remindly/internal/parser"
	"github.com/manav03panchal/remindly/internal/scheduler"
	"github.com/manav03panchal/remindly/internal/storage"
)

// jobMsg carries a function posted to the scheduler loop. Running it from
// Update puts scheduler work on bubbletea's update goroutine.
type jobMsg struct {
	fn func()
}

// clearStatusMsg clears the status line if it still shows message seq.
type clearStatusMsg struct {
	seq int
}

type screen int

const (
	screenMain screen = iota
	screenDaily
	screenSpecific
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAddDaily
	inputEditDaily
	inputSpecificDate
	inputSpecificText
	inputEditSpecific
)

// DashboardModel is the main bubbletea model for the dashboard.
type DashboardModel struct {
	// Data
	store         *storage.Store
	sink          notify.Sink
	service       *scheduler.Service
	lastAnnounced string
	armed         bool

	// UI state
	screen         screen
	dailyCursor    int
	specificCursor int
	mode           inputMode
	input          textinput.Model
	pendingDate    model.DateKey
	status         StatusLine
	pending        []tea.Cmd
	width          int
	height         int

	now func() time.Time
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Store *storage.Store
	// Sink receives test notifications and is handed to the scheduler.
	Sink notify.Sink
	// LastAnnounced seeds the "last announced" line, usually from history.
	LastAnnounced *model.Notification
	Now           func() time.Time
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.Now == nil {
		config.Now = time.Now
	}

	input := textinput.New()
	input.Prompt = "> "

	m := &DashboardModel{
		store: config.Store,
		sink:  config.Sink,
		input: input,
		now:   config.Now,
	}
	if config.LastAnnounced != nil {
		m.lastAnnounced = config.LastAnnounced.Display()
	}
	return m
}

// Run starts an in-process scheduler whose loop is the program's update
// loop, then runs the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, m *DashboardModel, opts scheduler.Options, programOpts ...tea.ProgramOption) error {
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)
	p := tea.NewProgram(m, programOpts...)

	opts.Store = m.store
	opts.Sink = m.sink
	opts.Loop = scheduler.NewDispatchLoop(func(fn func()) {
		p.Send(jobMsg{fn: fn})
	})
	opts.OnTick = m.OnTick
	opts.OnReload = m.OnReload
	m.service = scheduler.New(opts)

	if err := m.service.Start(ctx); err != nil {
		return err
	}
	defer m.service.Stop()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Announced records a delivered notification. It runs on the loop.
func (m *DashboardModel) Announced(n *model.Notification) {
	m.lastAnnounced = n.Display()
	if n.Delivered() {
		m.pending = append(m.pending, m.setStatus("Announced "+n.Display(), false))
	} else {
		m.pending = append(m.pending, m.setStatus("Notification failed: "+n.Error, true))
	}
}

// OnTick records the daily scheduler's state. It runs on the loop.
func (m *DashboardModel) OnTick(r scheduler.TickResult) {
	m.armed = r.Armed
}

// OnReload reacts to the reminder file changing on disk. It runs on the loop.
func (m *DashboardModel) OnReload(err error) {
	if err != nil {
		m.pending = append(m.pending, m.setStatus("Reminder file unreadable, showing empty reminders", true))
	}
	m.clampCursors()
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	if err := m.store.Load(); err != nil {
		logging.Warn("dashboard load failed", logging.KeyError, err)
		return m.setStatus("Reminder file unreadable, showing empty reminders", true)
	}
	return nil
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = boxWidth(msg.Width) - 6
		return m, nil

	case jobMsg:
		msg.fn()
		return m, m.takePending()

	case clearStatusMsg:
		m.status.Clear(msg.seq)
		return m, nil
	}

	if m.mode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress handles keyboard input outside of a prompt.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.screen {
	case screenMain:
		return m.handleMainKey(msg)
	case screenDaily:
		return m.handleDailyKey(msg)
	case screenSpecific:
		return m.handleSpecificKey(msg)
	}
	return m, nil
}

func (m *DashboardModel) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		m.screen = screenDaily
	case "s":
		m.screen = screenSpecific
	case "n":
		m.sink.Notify(context.Background(), model.TitleTest, model.TestMessage)
		return m, m.takePending()
	case "r":
		if err := m.store.Load(); err != nil {
			return m, m.setStatus("Reminder file unreadable, showing empty reminders", true)
		}
		m.clampCursors()
		return m, m.setStatus("Reloaded", false)
	}
	return m, nil
}

func (m *DashboardModel) handleDailyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.store.Daily())

	switch msg.String() {
	case "esc", "b":
		m.screen = screenMain
	case "up", "k":
		if m.dailyCursor > 0 {
			m.dailyCursor--
		}
	case "down", "j":
		if m.dailyCursor < count-1 {
			m.dailyCursor++
		}
	case "a":
		return m, m.prompt(inputAddDaily, "New daily reminder", "")
	case "e", "enter":
		if count == 0 {
			return m, nil
		}
		return m, m.prompt(inputEditDaily, "Edit daily reminder", m.store.Daily()[m.dailyCursor])
	case "x", "delete":
		if count == 0 {
			return m, nil
		}
		index := m.dailyCursor
		err := m.store.Update(func(s *storage.Store) error {
			return s.DeleteDaily(index)
		})
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.clampCursors()
		return m, m.setStatus("Daily reminder deleted", false)
	}
	return m, nil
}

func (m *DashboardModel) handleSpecificKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reminders := m.store.Specific()

	switch msg.String() {
	case "esc", "b":
		m.screen = screenMain
	case "up", "k":
		if m.specificCursor > 0 {
			m.specificCursor--
		}
	case "down", "j":
		if m.specificCursor < len(reminders)-1 {
			m.specificCursor++
		}
	case "a":
		return m, m.prompt(inputSpecificDate, "Date (YYYY-MM-DD, tomorrow, next friday)", "")
	case "e", "enter":
		if len(reminders) == 0 {
			return m, nil
		}
		r := reminders[m.specificCursor]
		m.pendingDate = r.Date
		return m, m.prompt(inputEditSpecific, "Edit reminder for "+r.Date.String(), r.Text)
	case "x", "delete":
		if len(reminders) == 0 {
			return m, nil
		}
		date := reminders[m.specificCursor].Date
		err := m.store.Update(func(s *storage.Store) error {
			return s.DeleteSpecific(date)
		})
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.clampCursors()
		return m, m.setStatus("Deleted reminder for "+date.String(), false)
	}
	return m, nil
}

// handleInputKey handles keyboard input while a prompt is open.
func (m *DashboardModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		return m, m.submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit applies the open prompt's value.
func (m *DashboardModel) submit(value string) tea.Cmd {
	var (
		err  error
		done string
	)

	switch m.mode {
	case inputAddDaily:
		err = m.store.Update(func(s *storage.Store) error {
			return s.AddDaily(value)
		})
		if err == nil {
			m.dailyCursor = len(m.store.Daily()) - 1
		}
		done = "Daily reminder added"

	case inputEditDaily:
		index := m.dailyCursor
		err = m.store.Update(func(s *storage.Store) error {
			return s.EditDaily(index, value)
		})
		done = "Daily reminder updated"

	case inputSpecificDate:
		date, perr := parser.ResolveDate(value, m.now(), true)
		if perr != nil {
			return m.setStatus(perr.Error(), true)
		}
		m.pendingDate = date
		existing, _ := m.store.SpecificFor(date)
		return m.prompt(inputSpecificText, "Reminder for "+parser.FormatDate(date), existing)

	case inputSpecificText:
		date := m.pendingDate
		err = m.store.Update(func(s *storage.Store) error {
			return s.AddOrReplaceSpecific(date, value)
		})
		if err == nil {
			m.selectSpecific(date)
		}
		done = "Saved reminder for " + date.String()

	case inputEditSpecific:
		date := m.pendingDate
		err = m.store.Update(func(s *storage.Store) error {
			return s.EditSpecific(date, value)
		})
		done = "Updated reminder for " + date.String()
	}

	if err != nil {
		// Keep the prompt open so the text can be fixed.
		return m.setStatus(err.Error(), true)
	}
	m.closePrompt()
	m.clampCursors()
	return m.setStatus(done, false)
}

func (m *DashboardModel) prompt(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *DashboardModel) closePrompt() {
	m.mode = inputNone
	m.pendingDate = ""
	m.input.Blur()
	m.input.Reset()
}

func (m *DashboardModel) selectSpecific(date model.DateKey) {
	for i, r := range m.store.Specific() {
		if r.Date == date {
			m.specificCursor = i
			return
		}
	}
}

func (m *DashboardModel) clampCursors() {
	m.dailyCursor = clamp(m.dailyCursor, len(m.store.Daily()))
	m.specificCursor = clamp(m.specificCursor, len(m.store.Specific()))
}

func clamp(cursor, length int) int {
	if cursor >= length {
		cursor = length - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// setStatus shows a message and returns the command that clears it.
func (m *DashboardModel) setStatus(text string, isError bool) tea.Cmd {
	seq := m.status.Set(text, isError)
	return tea.Tick(StatusClearAfter, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// takePending returns the commands queued by loop callbacks, which cannot
// return commands themselves.
func (m *DashboardModel) takePending() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{m.renderHeader()}

	if line := m.status.View(); line != "" {
		sections = append(sections, line)
	}

	switch m.screen {
	case screenMain:
		sections = append(sections, m.renderMain())
	case screenDaily:
		list := &ListComponent{
			Title:  "Daily Reminders",
			Items:  m.store.Daily(),
			Cursor: m.dailyCursor,
			Empty:  "No daily reminders yet",
			Width:  m.width,
		}
		sections = append(sections, list.View())
	case screenSpecific:
		list := &ListComponent{
			Title:  "Specific Reminders",
			Items:  specificItems(m.store.Specific(), m.now()),
			Cursor: m.specificCursor,
			Empty:  "No specific reminders yet",
			Width:  m.width,
		}
		sections = append(sections, list.View())
	}

	if m.mode != inputNone {
		sections = append(sections, StyleInputBox.Width(boxWidth(m.width)).Render(m.input.View()))
		sections = append(sections, HelpBar([2]string{"enter", "save"}, [2]string{"esc", "cancel"}))
	} else {
		sections = append(sections, m.helpBar())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) renderMain() string {
	today := model.DateKeyFor(m.now())
	text, ok := m.store.SpecificFor(today)

	tc := &TodayComponent{
		Today:         today,
		Specific:      text,
		HasSpecific:   ok,
		DailyCount:    len(m.store.Daily()),
		SpecificCount: len(m.store.Specific()),
		LastAnnounced: m.lastAnnounced,
		Armed:         m.armed,
		Width:         m.width,
	}
	if m.service != nil {
		tc.NextTick = m.service.NextTick()
	}
	return tc.View()
}

// renderHeader renders the dashboard header.
func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("Remindly")
	now := StyleSubtitle.Render(m.now().Format("Mon Jan 2, 15:04"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", now)
}

func (m *DashboardModel) helpBar() string {
	switch m.screen {
	case screenDaily, screenSpecific:
		return HelpBar(
			[2]string{"↑/↓", "move"},
			[2]string{"a", "add"},
			[2]string{"e", "edit"},
			[2]string{"x", "delete"},
			[2]string{"esc", "back"},
			[2]string{"q", "quit"},
		)
	default:
		return HelpBar(
			[2]string{"d", "daily"},
			[2]string{"s", "specific"},
			[2]string{"n", "test notification"},
			[2]string{"r", "reload"},
			[2]string{"q", "quit"},
		)
	}
}
