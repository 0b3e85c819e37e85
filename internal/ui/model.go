package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labdash/internal/authflow"
	"labdash/internal/config"
	"labdash/internal/datasource"
	"labdash/internal/domain"
	"labdash/internal/eventbus"
	"labdash/internal/glclient"
)

// viewID identifies the active view
type viewID int

const (
	viewUsers viewID = iota
	viewProjects
	viewMembers
	viewSchedules
	viewForm
	viewSetup
)

// Model is the root UI state
type Model struct {
	cfg    *config.Config
	cfgSvc config.ConfigService
	bus    eventbus.EventBus
	tokens *authflow.TokenStore
	flag   *authflow.Flag
	client *glclient.Client

	view viewID

	users     *listPane[domain.User]
	projects  *listPane[domain.Project]
	members   *listPane[domain.Member]
	memberOf  *domain.Project
	schedules *scheduleList
	form      *scheduleForm
	setup     *setupView

	spin         spinner.Model
	helpRenderer HelpRenderer
	helpOps      *HelpOps

	status    string
	statusSeq int

	width  int
	height int
}

// NewModel creates the root UI model
func NewModel(cfg *config.Config, cfgSvc config.ConfigService, bus eventbus.EventBus, tokens *authflow.TokenStore, flag *authflow.Flag) *Model {
	m := &Model{
		cfg:     cfg,
		cfgSvc:  cfgSvc,
		bus:     bus,
		tokens:  tokens,
		flag:    flag,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		helpOps: NewHelpOps(),
		setup:   newSetupView(cfg, cfgSvc, tokens),
	}
	m.rebuildClient()

	if tokens.Token() == "" {
		m.view = viewSetup
		m.setup.setNote("configure the backend to get started")
	}
	return m
}

// SetProgram hands the tea program reference to the help pager
func (m *Model) SetProgram(p *tea.Program) {
	m.helpOps.SetProgram(p)
}

// rebuildClient (re)creates the HTTP client and every list pane against the
// current backend URL. Old controllers are closed first so their in-flight
// requests die with them.
func (m *Model) rebuildClient() {
	m.closePanes()

	m.client = glclient.New(m.cfg.BaseURL, m.tokens)
	m.users = newListPane(paneUsers, "GitLab Users", m.newUsersController(), renderUserRow)
	m.projects = newListPane(paneProject, "Projects", m.newProjectsController(), renderProjectRow)
	m.members = nil
	m.memberOf = nil
	m.schedules = newScheduleList(m.client)
	m.form = nil
}

func (m *Model) closePanes() {
	if m.users != nil {
		m.users.close()
	}
	if m.projects != nil {
		m.projects.close()
	}
	if m.members != nil {
		m.members.close()
	}
	if m.form != nil {
		m.form.close()
	}
}

// Controller factories. Each binds the auth collaborators so a failed fetch
// can raise the process-wide flag or clear the session token.

func (m *Model) baseOptions() (time.Duration, int) {
	return time.Duration(m.cfg.DebounceMS) * time.Millisecond, m.cfg.PageSize
}

func (m *Model) onAuthRequired() {
	m.flag.Raise()
	m.bus.Publish(eventbus.AuthRequiredEvent{})
}

func (m *Model) onSessionExpired() {
	m.tokens.Clear()
	m.bus.Publish(eventbus.SessionExpiredEvent{})
}

func (m *Model) newUsersController() *datasource.Controller[domain.User] {
	client := m.client
	debounce, perPage := m.baseOptions()
	return datasource.New(datasource.Options[domain.User]{
		Fetch: func(ctx context.Context, req datasource.Request) ([]domain.User, error) {
			return client.ListUsers(ctx, glclient.ListUsersParams{
				Page:    req.Page,
				PerPage: req.PerPage,
				Search:  req.Search,
				Humans:  req.Filter("humans") != "false",
			})
		},
		PerPage:          perPage,
		Debounce:         debounce,
		Filters:          []datasource.Filter{{Name: "humans", Value: "true"}},
		FallbackError:    "failed to load users",
		OnAuthRequired:   m.onAuthRequired,
		OnSessionExpired: m.onSessionExpired,
	})
}

func (m *Model) newProjectsController() *datasource.Controller[domain.Project] {
	client := m.client
	debounce, perPage := m.baseOptions()
	return datasource.New(datasource.Options[domain.Project]{
		Fetch: func(ctx context.Context, req datasource.Request) ([]domain.Project, error) {
			params := glclient.ListProjectsParams{
				Page:    req.Page,
				PerPage: req.PerPage,
				Search:  req.Search,
			}
			if v := req.Filter("membership"); v != "" {
				b := v == "true"
				params.Membership = &b
			}
			return client.ListProjects(ctx, params)
		},
		PerPage:          perPage,
		Debounce:         debounce,
		FallbackError:    "failed to load projects",
		OnAuthRequired:   m.onAuthRequired,
		OnSessionExpired: m.onSessionExpired,
	})
}

func (m *Model) newMembersController(projectID int) *datasource.Controller[domain.Member] {
	client := m.client
	debounce, perPage := m.baseOptions()
	return datasource.New(datasource.Options[domain.Member]{
		Fetch: func(ctx context.Context, req datasource.Request) ([]domain.Member, error) {
			return client.ListProjectMembers(ctx, projectID, glclient.ListMembersParams{
				Page:    req.Page,
				PerPage: req.PerPage,
				Search:  req.Search,
			})
		},
		PerPage:          perPage,
		Debounce:         debounce,
		FallbackError:    "failed to load members",
		OnAuthRequired:   m.onAuthRequired,
		OnSessionExpired: m.onSessionExpired,
	})
}

func (m *Model) newPickerController() *datasource.Controller[domain.User] {
	client := m.client
	debounce, perPage := m.baseOptions()
	return datasource.New(datasource.Options[domain.User]{
		Fetch: func(ctx context.Context, req datasource.Request) ([]domain.User, error) {
			return client.ListUsers(ctx, glclient.ListUsersParams{
				Page:    req.Page,
				PerPage: req.PerPage,
				Search:  req.Search,
				Humans:  true,
			})
		},
		PerPage:          perPage,
		Debounce:         debounce,
		FallbackError:    "failed to search users",
		OnAuthRequired:   m.onAuthRequired,
		OnSessionExpired: m.onSessionExpired,
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.view != viewSetup {
		cmds = append(cmds, m.users.init(), m.projects.init(), m.schedules.load())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchDebounceMsg:
		return m.afterFetchWork(m.routeDebounce(msg))

	case fetchResolvedMsg[domain.User]:
		if msg.pane == panePicker {
			if m.form != nil {
				return m.afterFetchWork(m.form.picker.handleResolved(msg))
			}
			return m, nil
		}
		return m.afterFetchWork(m.users.handleResolved(msg))

	case fetchResolvedMsg[domain.Project]:
		return m.afterFetchWork(m.projects.handleResolved(msg))

	case fetchResolvedMsg[domain.Member]:
		if m.members == nil {
			return m, nil
		}
		return m.afterFetchWork(m.members.handleResolved(msg))

	case schedulesLoadedMsg:
		m.schedules.handleLoaded(msg)
		if msg.err != nil {
			m.oneShotFailure(msg.err)
			return m.afterFetchWork(nil)
		}
		return m, nil

	case scheduleSavedMsg:
		return m.handleScheduleSaved(msg)

	case scheduleDeletedMsg:
		if msg.err != nil {
			m.oneShotFailure(msg.err)
			return m.afterFetchWork(m.setStatus("delete failed: " + msg.err.Error()))
		}
		m.bus.Publish(eventbus.ScheduleDeletedEvent{ScheduleID: msg.id})
		return m, tea.Batch(m.setStatus("schedule deleted"), m.schedules.load())

	case scheduleRanMsg:
		if msg.err != nil {
			m.oneShotFailure(msg.err)
			return m.afterFetchWork(m.setStatus("run failed: " + msg.err.Error()))
		}
		m.bus.Publish(eventbus.ScheduleRunEvent{ScheduleID: msg.id})
		return m, tea.Batch(m.setStatus("report queued"), m.schedules.load())

	case setupSavedMsg:
		m.rebuildClient()
		m.resize()
		m.view = viewUsers
		return m, tea.Batch(m.users.init(), m.projects.init(), m.schedules.load())

	case helpPagerMsg:
		if msg.err != nil {
			log.Printf("help pager failed: %v", msg.err)
		}
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case EventMsg:
		return m.handleEvent(msg.Event)
	}

	return m, nil
}

// handleEvent reacts to domain events forwarded from the bus
func (m *Model) handleEvent(event eventbus.DomainEvent) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case eventbus.ErrorEvent:
		log.Printf("error event: %s: %v", e.Message, e.Err)
		return m, m.setStatus(e.Message)
	case eventbus.TokenUpdatedEvent:
		log.Printf("access token updated")
	case eventbus.SessionExpiredEvent:
		return m, m.setStatus("GitLab session expired – sign in again")
	}
	return m, nil
}

// afterFetchWork runs the shared post-fetch step: consuming the
// auth-required flag. The classifier raises it from inside Resolve; this is
// its single consumer, and consuming resets it.
func (m *Model) afterFetchWork(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.flag.TryConsume() {
		log.Printf("auth required, switching to setup")
		m.view = viewSetup
		m.setup.setNote("the backend has no usable GitLab token – reconfigure access")
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	if !m.typing() {
		switch key {
		case "q":
			m.shutdown()
			return m, tea.Quit
		case "?":
			return m, m.helpCmd()
		case "1":
			m.switchView(viewUsers)
			return m, nil
		case "2":
			m.switchView(viewProjects)
			return m, nil
		case "3":
			m.switchView(viewSchedules)
			return m, nil
		}
	}

	switch m.view {
	case viewUsers:
		if !m.users.searchFocus && key == "h" {
			return m, m.users.toggleFilter("humans")
		}
		return m.afterFetchWork(m.users.handleKey(msg))

	case viewProjects:
		if !m.projects.searchFocus {
			switch key {
			case "m":
				return m, m.projects.toggleFilter("membership")
			case "enter":
				if proj, ok := m.projects.selected(); ok {
					return m, m.openMembers(proj)
				}
				return m, nil
			}
		}
		return m.afterFetchWork(m.projects.handleKey(msg))

	case viewMembers:
		if !m.members.searchFocus && key == "esc" {
			m.closeMembers()
			return m, nil
		}
		return m.afterFetchWork(m.members.handleKey(msg))

	case viewSchedules:
		cmd, openForm := m.schedules.handleKey(msg)
		if openForm {
			return m, m.openForm()
		}
		return m, cmd

	case viewForm:
		cmd, closeForm := m.form.handleKey(msg)
		if closeForm {
			m.closeForm()
			return m, nil
		}
		return m.afterFetchWork(cmd)

	case viewSetup:
		cmd, _ := m.setup.handleKey(msg)
		return m, cmd
	}

	return m, nil
}

// typing reports whether a text input currently owns the keyboard
func (m *Model) typing() bool {
	switch m.view {
	case viewUsers:
		return m.users.searchFocus
	case viewProjects:
		return m.projects.searchFocus
	case viewMembers:
		return m.members != nil && m.members.searchFocus
	case viewForm, viewSetup:
		return true
	}
	return false
}

func (m *Model) switchView(v viewID) {
	if m.view == viewForm && v != viewForm {
		m.closeForm()
	}
	m.view = v
}

// openMembers opens the members list for a project. The previous members
// controller (a different project) is torn down; its identity parameter
// changed, so it cannot be reused.
func (m *Model) openMembers(proj domain.Project) tea.Cmd {
	if m.members != nil {
		m.members.close()
	}
	title := fmt.Sprintf("Members of %s", proj.NameWithNamespace)
	m.members = newListPane(paneMembers, title, m.newMembersController(proj.ID), renderMemberRow)
	m.memberOf = &proj
	m.members.setSize(m.width, m.contentHeight())
	m.view = viewMembers
	return m.members.init()
}

func (m *Model) closeMembers() {
	if m.members != nil {
		m.members.close()
		m.members = nil
	}
	m.memberOf = nil
	m.view = viewProjects
}

func (m *Model) openForm() tea.Cmd {
	m.form = newScheduleForm(m.client, m.newPickerController)
	m.form.setSize(m.width, m.contentHeight())
	m.view = viewForm
	return m.form.init()
}

func (m *Model) closeForm() {
	if m.form != nil {
		m.form.close()
		m.form = nil
	}
	m.view = viewSchedules
}

func (m *Model) handleScheduleSaved(msg scheduleSavedMsg) (tea.Model, tea.Cmd) {
	if m.form != nil && m.view == viewForm {
		if m.form.handleSaved(msg) {
			m.closeForm()
			m.bus.Publish(eventbus.ScheduleSavedEvent{Schedule: *msg.schedule})
			return m, tea.Batch(m.setStatus("schedule created"), m.schedules.load())
		}
		m.oneShotFailure(msg.err)
		return m.afterFetchWork(nil)
	}

	// Active-toggle path from the list view
	if msg.err != nil {
		m.oneShotFailure(msg.err)
		return m.afterFetchWork(m.setStatus("update failed: " + msg.err.Error()))
	}
	if msg.schedule != nil {
		m.bus.Publish(eventbus.ScheduleSavedEvent{Schedule: *msg.schedule})
	}
	return m, tea.Batch(m.setStatus("schedule updated"), m.schedules.load())
}

// oneShotFailure applies the shared error taxonomy to schedule operations,
// which run outside a datasource controller but must trigger the same auth
// flows. The caller routes through afterFetchWork so a raised flag is
// consumed immediately.
func (m *Model) oneShotFailure(err error) {
	if err == nil {
		return
	}
	switch datasource.Classify(err, "").Kind {
	case datasource.ErrAuthRequired:
		m.onAuthRequired()
	case datasource.ErrSessionExpired:
		m.onSessionExpired()
	}
}

func (m *Model) routeDebounce(msg searchDebounceMsg) tea.Cmd {
	switch msg.pane {
	case paneUsers:
		return m.users.handleDebounce(msg)
	case paneProject:
		return m.projects.handleDebounce(msg)
	case paneMembers:
		if m.members != nil {
			return m.members.handleDebounce(msg)
		}
	case panePicker:
		if m.form != nil {
			return m.form.picker.handleDebounce(msg)
		}
	}
	return nil
}

func (m *Model) helpCmd() tea.Cmd {
	content := m.helpRenderer.RenderHelpContent()
	ops := m.helpOps
	return func() tea.Msg {
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (m *Model) contentHeight() int {
	// header + status bar
	h := m.height - 3
	if h < 5 {
		h = 5
	}
	return h
}

func (m *Model) resize() {
	h := m.contentHeight()
	if m.users != nil {
		m.users.setSize(m.width, h)
	}
	if m.projects != nil {
		m.projects.setSize(m.width, h)
	}
	if m.members != nil {
		m.members.setSize(m.width, h)
	}
	if m.schedules != nil {
		m.schedules.setSize(m.width, h)
	}
	if m.form != nil {
		m.form.setSize(m.width, h)
	}
}

// shutdown tears down every live controller before quitting
func (m *Model) shutdown() {
	m.closePanes()
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	frame := m.spin.View()
	switch m.view {
	case viewUsers:
		b.WriteString(m.users.view(frame))
	case viewProjects:
		b.WriteString(m.projects.view(frame))
	case viewMembers:
		if m.members != nil {
			b.WriteString(m.members.view(frame))
		}
	case viewSchedules:
		b.WriteString(m.schedules.view(frame))
	case viewForm:
		if m.form != nil {
			b.WriteString(m.form.view(frame))
		}
	case viewSetup:
		b.WriteString(m.setup.view())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(dimStyle.Render("? help · q quit"))
	}
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := []struct {
		id    viewID
		label string
	}{
		{viewUsers, "1 Users"},
		{viewProjects, "2 Projects"},
		{viewSchedules, "3 Schedules"},
	}

	var parts []string
	for _, t := range tabs {
		style := tabStyle
		active := m.view == t.id ||
			(t.id == viewProjects && m.view == viewMembers) ||
			(t.id == viewSchedules && m.view == viewForm)
		if active {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(t.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
