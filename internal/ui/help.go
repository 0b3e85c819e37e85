package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// RenderHelpContent generates the key reference shown in the pager
func (r *HelpRenderer) RenderHelpContent() string {
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	row := func(key, desc string) string {
		return fmt.Sprintf("  %-18s %s\n", keyStyle.Render(key), descStyle.Render(desc))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("labdash Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Views"))
	help.WriteString("\n")
	help.WriteString(row("1 / 2 / 3", "Users, Projects, Schedules"))
	help.WriteString(row("enter", "Open members of the selected project"))
	help.WriteString(row("esc", "Back / close form"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Lists"))
	help.WriteString("\n")
	help.WriteString(row("↑/↓, j/k", "Move cursor"))
	help.WriteString(row("PgUp/PgDn", "Page up/down"))
	help.WriteString(row("g/G", "Go to top/bottom"))
	help.WriteString(row("/", "Search (debounced as you type)"))
	help.WriteString(row("h", "Toggle humans-only (users)"))
	help.WriteString(row("m", "Toggle membership-only (projects)"))
	help.WriteString(row("r", "Retry after an error"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Schedules"))
	help.WriteString("\n")
	help.WriteString(row("n", "New schedule"))
	help.WriteString(row("a", "Toggle active"))
	help.WriteString(row("R", "Run report now"))
	help.WriteString(row("d", "Delete (with confirmation)"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	help.WriteString(row("?", "This help"))
	help.WriteString(row("q", "Quit"))

	return help.String()
}

// HelpOps runs the help pager
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps() *HelpOps {
	return &HelpOps{}
}

// SetProgram sets the program reference for terminal management
func (h *HelpOps) SetProgram(p *tea.Program) {
	h.program = p
}

// ShowHelpInPager shows help content using the ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay so ov has fully exited before restoring the terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	reader := strings.NewReader(helpContent)

	root, err := oviewer.NewRoot(reader)
	if err != nil {
		return err
	}

	// Don't write pager content on exit, it would clobber our screen
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
