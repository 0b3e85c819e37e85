package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"labdash/internal/authflow"
	"labdash/internal/config"
)

// setupView collects the backend URL and access token. The auth-required
// flow lands here when the backend reports its GitLab token is unusable.
type setupView struct {
	cfg    *config.Config
	cfgSvc config.ConfigService
	tokens *authflow.TokenStore

	url   textinput.Model
	token textinput.Model
	focus int // 0 = url, 1 = token
	note  string
}

func newSetupView(cfg *config.Config, cfgSvc config.ConfigService, tokens *authflow.TokenStore) *setupView {
	url := textinput.New()
	url.Placeholder = "http://localhost:8000/api/v1"
	url.SetValue(cfg.BaseURL)
	url.Width = 60
	url.Focus()

	token := textinput.New()
	token.Placeholder = "access token"
	token.EchoMode = textinput.EchoPassword
	token.Width = 60

	return &setupView{
		cfg:    cfg,
		cfgSvc: cfgSvc,
		tokens: tokens,
		url:    url,
		token:  token,
	}
}

// setNote sets the explanatory line shown above the fields, e.g. why the
// user was sent here.
func (v *setupView) setNote(note string) {
	v.note = note
}

// handleKey processes input. Returns a command and whether setup finished
// (fields saved; the root model rebuilds the client).
func (v *setupView) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		if v.focus == 0 {
			v.focus = 1
			v.url.Blur()
			v.token.Focus()
		} else {
			v.focus = 0
			v.token.Blur()
			v.url.Focus()
		}
		return nil, false
	case "enter":
		if v.focus == 0 {
			v.focus = 1
			v.url.Blur()
			v.token.Focus()
			return nil, false
		}
		return v.save(), true
	}

	var cmd tea.Cmd
	if v.focus == 0 {
		v.url, cmd = v.url.Update(msg)
	} else {
		v.token, cmd = v.token.Update(msg)
	}
	return cmd, false
}

func (v *setupView) save() tea.Cmd {
	v.cfg.BaseURL = strings.TrimRight(strings.TrimSpace(v.url.Value()), "/")
	v.tokens.Set(strings.TrimSpace(v.token.Value()))
	return func() tea.Msg { return setupSavedMsg{} }
}

func (v *setupView) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Backend Setup"))
	b.WriteString("\n\n")
	if v.note != "" {
		b.WriteString(errorStyle.Render(v.note))
		b.WriteString("\n\n")
	}
	b.WriteString(formLabelStyle.Render("Backend URL"))
	b.WriteString("\n")
	b.WriteString(v.url.View())
	b.WriteString("\n\n")
	b.WriteString(formLabelStyle.Render("Access token"))
	b.WriteString("\n")
	b.WriteString(v.token.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("tab to switch · enter to save"))
	return b.String()
}
