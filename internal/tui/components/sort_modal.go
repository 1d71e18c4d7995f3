package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const sortModalWidth = 22

// SortModal is a small popup for choosing the sort order
type SortModal struct {
	visible bool
	options []catalog.SortKey
	cursor  int
	active  catalog.SortKey
}

// NewSortModal creates a new sort modal
func NewSortModal() SortModal {
	return SortModal{options: catalog.SortOptions()}
}

// Show displays the modal with the cursor on the active key
func (m *SortModal) Show(active catalog.SortKey) {
	m.visible = true
	m.active = active
	m.cursor = 0
	for i, opt := range m.options {
		if opt == active {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the modal
func (m *SortModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m SortModal) IsVisible() bool {
	return m.visible
}

// HandleKey processes a key press, returns (handled, selection).
// If selection is non-nil, the user confirmed a choice.
func (m *SortModal) HandleKey(msg tea.KeyMsg) (handled bool, selection *catalog.SortKey) {
	if !m.visible {
		return false, nil
	}

	switch {
	case key.Matches(msg, ModalKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(msg, ModalKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, ModalKeys.Enter):
		chosen := m.options[m.cursor]
		m.visible = false
		return true, &chosen
	case key.Matches(msg, ModalKeys.Escape), msg.String() == "o":
		m.visible = false
	}

	return true, nil // consume all keys when visible
}

// View renders the sort modal
func (m SortModal) View() string {
	if !m.visible {
		return ""
	}

	var lines []string
	for i, opt := range m.options {
		prefix := "  "
		if opt == m.active {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+opt.String(), sortModalWidth)

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		switch {
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		case opt == m.active:
			style = lipgloss.NewStyle().Foreground(styles.MarqueeRed)
		}
		lines = append(lines, style.Render(text))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.MarqueeRed).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render("Ordenar por") + "\n" + strings.Join(lines, "\n"))
}
