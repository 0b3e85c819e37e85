package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"labdash/internal/domain"
)

// Row renderers for the three list item types. Each produces one line,
// truncated to the pane width.

func renderUserRow(u domain.User, selected bool, width int) string {
	var badges []string
	if u.IsAdmin {
		badges = append(badges, badgeStyle.Render("admin"))
	}
	if u.Bot {
		badges = append(badges, badgeStyle.Render("bot"))
	}
	if u.State != "active" {
		badges = append(badges, dimStyle.Render(u.State))
	}

	line := fmt.Sprintf("  %s %s", u.Name, dimStyle.Render("@"+u.Username))
	if len(badges) > 0 {
		line += " " + strings.Join(badges, " ")
	}
	return styleRow(line, selected, width)
}

func renderProjectRow(p domain.Project, selected bool, width int) string {
	line := "  " + p.NameWithNamespace
	if len(p.Topics) > 0 {
		line += " " + dimStyle.Render("["+strings.Join(p.Topics, ", ")+"]")
	}
	return styleRow(line, selected, width)
}

func renderMemberRow(m domain.Member, selected bool, width int) string {
	line := fmt.Sprintf("  %s %s %s",
		m.Name,
		dimStyle.Render("@"+m.Username),
		badgeStyle.Render(m.AccessLevelName),
	)
	return styleRow(line, selected, width)
}

// renderPickerRow is the compact user row used inside the schedule form
func renderPickerRow(u domain.User, selected bool, width int) string {
	line := fmt.Sprintf("  %s (@%s)", u.Name, u.Username)
	return styleRow(line, selected, width)
}

func styleRow(line string, selected bool, width int) string {
	line = truncate(line, width)
	if selected {
		return selectedRowStyle.Render("▸" + line[1:])
	}
	return line
}

// truncate cuts a line to width display cells. Rows carry styled badges and
// dim suffixes, so the cut must be escape-aware or it can land inside a
// color sequence.
func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width-1, "…")
}
