package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"labdash/internal/domain"
	"labdash/internal/glclient"
)

// scheduleList is the schedules management view. The backend returns the
// full schedule set in one response, so this view is a plain fetch rather
// than a datasource controller instance.
type scheduleList struct {
	client *glclient.Client

	schedules []domain.Schedule
	cursor    int
	loading   bool
	err       error

	confirmDelete string // schedule ID pending confirmation, empty otherwise

	width  int
	height int
}

func newScheduleList(client *glclient.Client) *scheduleList {
	return &scheduleList{client: client}
}

// requestTimeout bounds one-shot schedule operations; list fetches use the
// supersession contexts instead.
const requestTimeout = 15 * time.Second

func (s *scheduleList) load() tea.Cmd {
	s.loading = true
	s.err = nil
	client := s.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		schedules, err := client.ListSchedules(ctx)
		return schedulesLoadedMsg{schedules: schedules, err: err}
	}
}

func (s *scheduleList) handleLoaded(msg schedulesLoadedMsg) {
	s.loading = false
	s.err = msg.err
	if msg.err == nil {
		s.schedules = msg.schedules
		if s.cursor >= len(s.schedules) {
			s.cursor = len(s.schedules) - 1
		}
		if s.cursor < 0 {
			s.cursor = 0
		}
	}
}

// handleKey processes keys while the schedules view is active. Returns the
// command to run and whether the root model should open the creation form.
func (s *scheduleList) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if s.confirmDelete != "" {
		switch msg.String() {
		case "y", "Y":
			id := s.confirmDelete
			s.confirmDelete = ""
			return s.deleteCmd(id), false
		default:
			s.confirmDelete = ""
		}
		return nil, false
	}

	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.schedules)-1 {
			s.cursor++
		}
	case "n":
		return nil, true
	case "r":
		return s.load(), false
	case "a":
		if sc, ok := s.selected(); ok {
			return s.toggleActiveCmd(sc), false
		}
	case "R":
		if sc, ok := s.selected(); ok {
			return s.runNowCmd(sc.ID), false
		}
	case "d", "delete":
		if sc, ok := s.selected(); ok {
			s.confirmDelete = sc.ID
		}
	}
	return nil, false
}

func (s *scheduleList) selected() (domain.Schedule, bool) {
	if s.cursor < 0 || s.cursor >= len(s.schedules) {
		return domain.Schedule{}, false
	}
	return s.schedules[s.cursor], true
}

func (s *scheduleList) deleteCmd(id string) tea.Cmd {
	client := s.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.DeleteSchedule(ctx, id)
		return scheduleDeletedMsg{id: id, err: err}
	}
}

func (s *scheduleList) toggleActiveCmd(sc domain.Schedule) tea.Cmd {
	client := s.client
	draft := domain.ScheduleDraft{
		UserID:    sc.UserID,
		To:        sc.To,
		CC:        sc.CC,
		BCC:       sc.BCC,
		Subject:   sc.Subject,
		DayOfWeek: sc.DayOfWeek,
		HourUTC:   sc.HourUTC,
		MinuteUTC: sc.MinuteUTC,
		Active:    !sc.Active,
	}
	id := sc.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		updated, err := client.UpdateSchedule(ctx, id, draft)
		return scheduleSavedMsg{schedule: updated, err: err}
	}
}

func (s *scheduleList) runNowCmd(id string) tea.Cmd {
	client := s.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.RunScheduleNow(ctx, id)
		return scheduleRanMsg{id: id, err: err}
	}
}

func (s *scheduleList) setSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *scheduleList) view(spinnerFrame string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Report Schedules"))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(statusStyle.Render(spinnerFrame + " loading…"))
	case s.err != nil:
		b.WriteString(errorStyle.Render("✗ " + s.err.Error()))
		b.WriteString(dimStyle.Render("  (r to retry)"))
	case len(s.schedules) == 0:
		b.WriteString(dimStyle.Render("no schedules · press n to create one"))
	default:
		for i, sc := range s.schedules {
			b.WriteString(s.renderRow(sc, i == s.cursor))
			b.WriteString("\n")
		}
	}

	if s.confirmDelete != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("delete this schedule? (y/n)"))
	}
	return b.String()
}

func (s *scheduleList) renderRow(sc domain.Schedule, selected bool) string {
	state := filterOnStyle.Render("active")
	if !sc.Active {
		state = dimStyle.Render("paused")
	}

	when := fmt.Sprintf("%s %02d:%02d UTC", sc.DayOfWeek, sc.HourUTC, sc.MinuteUTC)
	line := fmt.Sprintf("  user %d → %s · %s · %s", sc.UserID, strings.Join(sc.To, ", "), when, state)

	if sc.NextRunAt != nil {
		line += dimStyle.Render("  next " + sc.NextRunAt.Format("Jan 2 15:04"))
	}
	if sc.LastError != "" {
		line += " " + errorStyle.Render("last run failed")
	}
	return styleRow(line, selected, s.width)
}
