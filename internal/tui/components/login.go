package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// LoginForm collects email and password
type LoginForm struct {
	email      textinput.Model
	password   textinput.Model
	focus      int // 0 email, 1 password
	err        string
	submitting bool
}

// NewLoginForm creates an empty login form
func NewLoginForm() LoginForm {
	email := textinput.New()
	email.Placeholder = "seu@email.com"
	email.Prompt = ""
	email.CharLimit = 120
	email.Width = 32
	email.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	email.PlaceholderStyle = styles.DimStyle

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.Prompt = ""
	password.CharLimit = 120
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	password.PlaceholderStyle = styles.DimStyle

	return LoginForm{email: email, password: password}
}

// Reset clears the fields and focuses the email
func (f *LoginForm) Reset() tea.Cmd {
	f.email.SetValue("")
	f.password.SetValue("")
	f.err = ""
	f.submitting = false
	f.focus = 0
	f.password.Blur()
	return f.email.Focus()
}

// Credentials returns the trimmed email and the raw password
func (f LoginForm) Credentials() (email, password string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

// SetError shows a message and allows another attempt. The password is
// cleared.
func (f *LoginForm) SetError(msg string) {
	f.err = msg
	f.submitting = false
	f.password.SetValue("")
}

// SetSubmitting marks a sign-in in flight
func (f *LoginForm) SetSubmitting(submitting bool) {
	f.submitting = submitting
	if submitting {
		f.err = ""
	}
}

// Submitting reports whether a sign-in is in flight
func (f LoginForm) Submitting() bool {
	return f.submitting
}

func (f *LoginForm) setFocus(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

// Update handles input, returns (form, cmd, submitted). Enter on the email
// moves to the password; enter on the password submits when both are set.
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FormKeys.Next), key.Matches(keyMsg, FormKeys.Prev):
			return f, f.setFocus(1 - f.focus), false
		case keyMsg.String() == "enter":
			if f.focus == 0 {
				return f, f.setFocus(1), false
			}
			email, password := f.Credentials()
			if f.submitting || email == "" || password == "" {
				return f, nil, false
			}
			return f, nil, true
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd, false
}

// View renders the login box
func (f LoginForm) View() string {
	label := func(text string, focused bool) string {
		text = styles.Pad(text, 8)
		if focused {
			return styles.AccentStyle.Render(text)
		}
		return styles.SubtitleStyle.Render(text)
	}

	rows := []string{
		styles.ModalTitleStyle.Render("Entrar"),
		styles.SubtitleStyle.Render("Acesse o painel administrativo"),
		"",
		label("E-mail", f.focus == 0) + f.email.View(),
		label("Senha", f.focus == 1) + f.password.View(),
		"",
	}
	switch {
	case f.submitting:
		rows = append(rows, styles.DimStyle.Render("Entrando..."))
	case f.err != "":
		rows = append(rows, styles.ErrorStyle.Render(f.err))
	default:
		rows = append(rows, styles.RenderHelp("enter", "entrar", "esc", "voltar"))
	}
	return styles.ModalStyle.Render(strings.Join(rows, "\n"))
}
