package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const confirmModalWidth = 44

// ConfirmModal asks a yes/no question about a pending action. Payload
// carries what the action applies to, e.g. an item ID.
type ConfirmModal struct {
	visible bool
	title   string
	message string
	payload string
}

// NewConfirmModal creates a hidden confirm modal
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{}
}

// Show displays the modal
func (m *ConfirmModal) Show(title, message, payload string) {
	m.visible = true
	m.title = title
	m.message = message
	m.payload = payload
}

// Hide dismisses the modal
func (m *ConfirmModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// Payload returns the value passed to Show
func (m ConfirmModal) Payload() string {
	return m.payload
}

// HandleKey processes a key press, returns (handled, confirmed). The modal
// hides itself on either answer.
func (m *ConfirmModal) HandleKey(msg tea.KeyMsg) (handled, confirmed bool) {
	if !m.visible {
		return false, false
	}
	switch {
	case key.Matches(msg, ModalKeys.Confirm):
		m.visible = false
		return true, true
	case key.Matches(msg, ModalKeys.Deny):
		m.visible = false
	}
	return true, false
}

// View renders the confirm modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.White).
		Bold(true).
		Width(confirmModalWidth).
		Background(styles.SlateDark)

	bodyStyle := lipgloss.NewStyle().
		Foreground(styles.LightGray).
		Width(confirmModalWidth).
		Background(styles.SlateDark)

	spacer := lipgloss.NewStyle().
		Width(confirmModalWidth).
		Background(styles.SlateDark).
		Render("")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		spacer,
		bodyStyle.Render(m.message),
		spacer,
		bodyStyle.Render(styles.RenderHelp("s", "sim", "n/esc", "não")),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.MarqueeRed).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(content)
}
