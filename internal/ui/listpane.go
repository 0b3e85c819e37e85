package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"labdash/internal/datasource"
)

// rowRenderer draws one item as a single line
type rowRenderer[T any] func(item T, selected bool, width int) string

// listPane is the view-side half of a datasource controller: a search box, a
// scrolling row window, and the sentinel that drives infinite scroll. All
// four list surfaces (users, projects, members, the schedule form's user
// picker) are instances of this one type.
type listPane[T any] struct {
	id    paneID
	title string
	ctrl  *datasource.Controller[T]

	input       textinput.Model
	searchFocus bool

	render   rowRenderer[T]
	sentinel *datasource.Sentinel
	pending  *datasource.Fetch[T]

	cursor int
	offset int
	width  int
	height int
}

func newListPane[T any](id paneID, title string, ctrl *datasource.Controller[T], render rowRenderer[T]) *listPane[T] {
	input := textinput.New()
	input.Placeholder = "type to search"
	input.Prompt = "/ "
	input.CharLimit = 120

	p := &listPane[T]{
		id:     id,
		title:  title,
		ctrl:   ctrl,
		input:  input,
		render: render,
	}
	p.bindSentinel()
	return p
}

// bindSentinel attaches a fresh sentinel. The controller disconnects the
// previous one, so panes can rebind after being rebuilt without risking a
// double trigger.
func (p *listPane[T]) bindSentinel() {
	p.sentinel = &datasource.Sentinel{}
	p.ctrl.BindSentinel(p.sentinel, func(f *datasource.Fetch[T]) {
		p.pending = f
	})
}

// init issues the initial fetch
func (p *listPane[T]) init() tea.Cmd {
	if f := p.ctrl.Start(); f != nil {
		return p.fetchCmd(f)
	}
	return nil
}

// fetchCmd runs a dispatched fetch off the update loop and routes the
// outcome back to this pane.
func (p *listPane[T]) fetchCmd(f *datasource.Fetch[T]) tea.Cmd {
	return func() tea.Msg {
		items, err := f.Do()
		return fetchResolvedMsg[T]{pane: p.id, src: f.Ctrl, gen: f.Gen, items: items, err: err}
	}
}

// debounceCmd schedules the commit timer for a keystroke
func (p *listPane[T]) debounceCmd(token uint64) tea.Cmd {
	pane := p.id
	return tea.Tick(p.ctrl.DebounceDelay(), func(time.Time) tea.Msg {
		return searchDebounceMsg{pane: pane, token: token}
	})
}

// close tears the pane down, cancelling any in-flight fetch
func (p *listPane[T]) close() {
	p.ctrl.Close()
}

func (p *listPane[T]) setSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width - 4
}

// handleKey processes a key press while this pane is the active view.
func (p *listPane[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.searchFocus {
		switch msg.String() {
		case "esc", "enter":
			p.searchFocus = false
			p.input.Blur()
			return nil
		default:
			before := p.input.Value()
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			if v := p.input.Value(); v != before {
				token := p.ctrl.SetSearch(v)
				return tea.Batch(cmd, p.debounceCmd(token))
			}
			return cmd
		}
	}

	switch msg.String() {
	case "/":
		p.searchFocus = true
		p.input.Focus()
		return textinput.Blink
	case "up", "k":
		p.moveCursor(-1)
	case "down", "j":
		p.moveCursor(1)
	case "pgup":
		p.moveCursor(-p.rowWindow())
	case "pgdown":
		p.moveCursor(p.rowWindow())
	case "g":
		p.cursor = 0
		p.ensureVisible()
	case "G":
		p.cursor = len(p.ctrl.Items()) - 1
		p.ensureVisible()
		return p.checkSentinel()
	case "r":
		if p.ctrl.Err() != nil {
			if f := p.ctrl.Retry(); f != nil {
				return p.fetchCmd(f)
			}
		}
	}
	return p.checkSentinel()
}

// handleDebounce commits a debounced search term
func (p *listPane[T]) handleDebounce(msg searchDebounceMsg) tea.Cmd {
	if f := p.ctrl.CommitSearch(msg.token); f != nil {
		return p.fetchCmd(f)
	}
	return nil
}

// handleResolved feeds a fetch outcome into the controller. Results from a
// different controller instance (this pane replaced one that still had a
// fetch in flight) are dropped outright; the generation check inside Resolve
// cannot catch those, since each instance counts generations from zero.
func (p *listPane[T]) handleResolved(msg fetchResolvedMsg[T]) tea.Cmd {
	if msg.src != p.ctrl.ID() {
		return nil
	}
	before := len(p.ctrl.Items())
	p.ctrl.Resolve(msg.gen, msg.items, msg.err)

	// A page-1 result replaced the list; anything else left the prefix alone.
	if len(p.ctrl.Items()) != before && p.ctrl.Page() == 1 {
		p.cursor = 0
		p.offset = 0
	}
	if n := len(p.ctrl.Items()); p.cursor >= n && n > 0 {
		p.cursor = n - 1
	}
	p.ensureVisible()
	return nil
}

// toggleFilter flips a boolean filter flag and starts the refetch
func (p *listPane[T]) toggleFilter(name string) tea.Cmd {
	next := "true"
	if p.ctrl.Filter(name) == "true" {
		next = "false"
	}
	if f := p.ctrl.SetFilter(name, next); f != nil {
		return p.fetchCmd(f)
	}
	return nil
}

// selected returns the item under the cursor
func (p *listPane[T]) selected() (T, bool) {
	var zero T
	items := p.ctrl.Items()
	if p.cursor < 0 || p.cursor >= len(items) {
		return zero, false
	}
	return items[p.cursor], true
}

func (p *listPane[T]) moveCursor(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if n := len(p.ctrl.Items()); p.cursor >= n {
		p.cursor = n - 1
		if p.cursor < 0 {
			p.cursor = 0
		}
	}
	p.ensureVisible()
}

// checkSentinel reports visibility of the tail row to the sentinel and
// converts any triggered fetch into a command. The guards (loading, no more
// pages) live in the controller, not here.
func (p *listPane[T]) checkSentinel() tea.Cmd {
	if p.offset+p.rowWindow() >= len(p.ctrl.Items()) {
		p.sentinel.Visible()
	}
	if f := p.pending; f != nil {
		p.pending = nil
		return p.fetchCmd(f)
	}
	return nil
}

// rowWindow is the number of item rows that fit in the pane
func (p *listPane[T]) rowWindow() int {
	// title + search + footer
	h := p.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (p *listPane[T]) ensureVisible() {
	win := p.rowWindow()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+win {
		p.offset = p.cursor - win + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// view renders the pane
func (p *listPane[T]) view(spinnerFrame string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.title))
	if term := p.ctrl.Term(); term != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [search: %s]", term)))
	}
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")

	items := p.ctrl.Items()
	win := p.rowWindow()
	end := p.offset + win
	if end > len(items) {
		end = len(items)
	}
	for i := p.offset; i < end; i++ {
		b.WriteString(p.render(items[i], i == p.cursor, p.width))
		b.WriteString("\n")
	}
	for i := end - p.offset; i < win; i++ {
		b.WriteString("\n")
	}

	b.WriteString(p.footer(spinnerFrame))
	return b.String()
}

// footer shows the loading / error / pagination state under the rows
func (p *listPane[T]) footer(spinnerFrame string) string {
	if err := p.ctrl.Err(); err != nil {
		if err.Message != "" {
			return errorStyle.Render("✗ "+err.Message) + dimStyle.Render("  (r to retry)")
		}
		return ""
	}
	if p.ctrl.Loading() {
		return statusStyle.Render(spinnerFrame + " loading…")
	}
	n := len(p.ctrl.Items())
	if n == 0 {
		return dimStyle.Render("no results")
	}
	if p.ctrl.HasMore() {
		return dimStyle.Render(fmt.Sprintf("%d loaded · scroll for more", n))
	}
	return dimStyle.Render(fmt.Sprintf("%d loaded · end of list", n))
}
