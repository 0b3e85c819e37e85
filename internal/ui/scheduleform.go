package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"labdash/internal/datasource"
	"labdash/internal/domain"
	"labdash/internal/glclient"
)

// Form focus slots, cycled with tab/shift+tab
const (
	focusPicker = iota
	focusTo
	focusCC
	focusBCC
	focusSubject
	focusDay
	focusHour
	focusMinute
	focusActive
	focusSubmit
	focusCount
)

// scheduleForm creates a new weekly report schedule. The report subject is
// picked through an embedded user search, which is its own datasource
// controller instance, created when the form opens and closed with it.
type scheduleForm struct {
	client *glclient.Client
	picker *listPane[domain.User]

	chosen *domain.User

	to      textinput.Model
	cc      textinput.Model
	bcc     textinput.Model
	subject textinput.Model
	day     int
	hour    int
	minute  int
	active  bool

	focus      int
	saving     bool
	formErr    string
	width      int
	height     int
}

func newScheduleForm(client *glclient.Client, newPickerCtrl func() *datasource.Controller[domain.User]) *scheduleForm {
	mkInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 240
		in.Width = 60
		return in
	}

	f := &scheduleForm{
		client:  client,
		picker:  newListPane(panePicker, "Report subject (search users)", newPickerCtrl(), renderPickerRow),
		to:      mkInput("to: comma-separated addresses"),
		cc:      mkInput("cc (optional)"),
		bcc:     mkInput("bcc (optional)"),
		subject: mkInput("subject (optional)"),
		hour:    7,
		active:  true,
	}
	f.picker.setSize(70, 10)
	return f
}

func (f *scheduleForm) init() tea.Cmd {
	return f.picker.init()
}

func (f *scheduleForm) close() {
	f.picker.close()
}

func (f *scheduleForm) setSize(width, height int) {
	f.width = width
	f.height = height
	f.picker.setSize(width, 10)
}

// handleKey processes a key press while the form is open. Returns the
// command to run and whether the form wants to close.
func (f *scheduleForm) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if f.saving {
		return nil, false
	}

	switch msg.String() {
	case "esc":
		if f.focus == focusPicker && f.picker.searchFocus {
			break // let the picker blur its own search box
		}
		return nil, true
	case "tab":
		f.setFocus((f.focus + 1) % focusCount)
		return nil, false
	case "shift+tab":
		f.setFocus((f.focus + focusCount - 1) % focusCount)
		return nil, false
	}

	switch f.focus {
	case focusPicker:
		if msg.String() == "enter" && !f.picker.searchFocus {
			if u, ok := f.picker.selected(); ok {
				f.chosen = &u
				f.setFocus(focusTo)
			}
			return nil, false
		}
		return f.picker.handleKey(msg), false
	case focusTo, focusCC, focusBCC, focusSubject:
		var cmd tea.Cmd
		switch f.focus {
		case focusTo:
			f.to, cmd = f.to.Update(msg)
		case focusCC:
			f.cc, cmd = f.cc.Update(msg)
		case focusBCC:
			f.bcc, cmd = f.bcc.Update(msg)
		case focusSubject:
			f.subject, cmd = f.subject.Update(msg)
		}
		return cmd, false
	case focusDay:
		switch msg.String() {
		case "left", "h":
			f.day = (f.day + len(domain.DayNames) - 1) % len(domain.DayNames)
		case "right", "l", "enter", " ":
			f.day = (f.day + 1) % len(domain.DayNames)
		}
	case focusHour:
		f.hour = adjustClock(f.hour, 24, msg.String())
	case focusMinute:
		f.minute = adjustClock(f.minute, 60, msg.String())
	case focusActive:
		if msg.String() == " " || msg.String() == "enter" {
			f.active = !f.active
		}
	case focusSubmit:
		if msg.String() == "enter" {
			return f.submit(), false
		}
	}
	return nil, false
}

func adjustClock(v, modulo int, key string) int {
	switch key {
	case "up", "k", "right", "l":
		return (v + 1) % modulo
	case "down", "j", "left", "h":
		return (v + modulo - 1) % modulo
	}
	return v
}

func (f *scheduleForm) setFocus(focus int) {
	f.focus = focus
	f.to.Blur()
	f.cc.Blur()
	f.bcc.Blur()
	f.subject.Blur()
	switch focus {
	case focusTo:
		f.to.Focus()
	case focusCC:
		f.cc.Focus()
	case focusBCC:
		f.bcc.Focus()
	case focusSubject:
		f.subject.Focus()
	}
}

// submit validates the draft and starts the create request
func (f *scheduleForm) submit() tea.Cmd {
	if f.chosen == nil {
		f.formErr = "pick a user to report on"
		return nil
	}
	to := domain.SplitRecipients(f.to.Value())
	if len(to) == 0 {
		f.formErr = "at least one recipient is required"
		return nil
	}

	f.formErr = ""
	f.saving = true
	draft := domain.ScheduleDraft{
		UserID:    f.chosen.ID,
		To:        to,
		CC:        domain.SplitRecipients(f.cc.Value()),
		BCC:       domain.SplitRecipients(f.bcc.Value()),
		Subject:   strings.TrimSpace(f.subject.Value()),
		DayOfWeek: domain.DayNames[f.day],
		HourUTC:   f.hour,
		MinuteUTC: f.minute,
		Active:    f.active,
	}

	client := f.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		created, err := client.CreateSchedule(ctx, draft)
		return scheduleSavedMsg{schedule: created, err: err}
	}
}

// handleSaved reacts to the create result. Returns true when the form
// should close (the save succeeded).
func (f *scheduleForm) handleSaved(msg scheduleSavedMsg) bool {
	f.saving = false
	if msg.err != nil {
		f.formErr = msg.err.Error()
		return false
	}
	return true
}

func (f *scheduleForm) view(spinnerFrame string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Report Schedule"))
	b.WriteString("\n\n")

	if f.chosen != nil {
		b.WriteString(formLabelStyle.Render("Subject user: "))
		b.WriteString(fmt.Sprintf("%s (@%s)\n\n", f.chosen.Name, f.chosen.Username))
	}
	if f.focus == focusPicker {
		b.WriteString(f.picker.view(spinnerFrame))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter to choose · tab to skip"))
		b.WriteString("\n\n")
	}

	b.WriteString(f.fieldLine(focusTo, "To     ", f.to.View()))
	b.WriteString(f.fieldLine(focusCC, "Cc     ", f.cc.View()))
	b.WriteString(f.fieldLine(focusBCC, "Bcc    ", f.bcc.View()))
	b.WriteString(f.fieldLine(focusSubject, "Subject", f.subject.View()))
	b.WriteString(f.fieldLine(focusDay, "Day    ", strings.Join(dayChoices(f.day), " ")))
	b.WriteString(f.fieldLine(focusHour, "Hour   ", fmt.Sprintf("%02d UTC", f.hour)))
	b.WriteString(f.fieldLine(focusMinute, "Minute ", fmt.Sprintf("%02d", f.minute)))
	b.WriteString(f.fieldLine(focusActive, "Active ", strconv.FormatBool(f.active)))

	submit := "[ create schedule ]"
	if f.saving {
		submit = spinnerFrame + " saving…"
	}
	b.WriteString(f.fieldLine(focusSubmit, "       ", submit))

	if f.formErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + f.formErr))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab/shift+tab to move · esc to cancel"))
	return b.String()
}

func (f *scheduleForm) fieldLine(focus int, label, value string) string {
	marker := "  "
	style := formLabelStyle
	if f.focus == focus {
		marker = "> "
		style = formFocusStyle
	}
	return fmt.Sprintf("%s%s %s\n", marker, style.Render(label), value)
}

func dayChoices(selected int) []string {
	out := make([]string, len(domain.DayNames))
	for i, d := range domain.DayNames {
		if i == selected {
			out[i] = activeTabStyle.Render(d)
		} else {
			out[i] = dimStyle.Render(d)
		}
	}
	return out
}
