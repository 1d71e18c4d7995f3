package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// CategoryItem implements list.Item for categories
type CategoryItem struct {
	Category catalog.Category
}

func (i CategoryItem) FilterValue() string { return i.Category.Name }

func (i CategoryItem) Title() string { return i.Category.Icon + " " + i.Category.Name }

func (i CategoryItem) Description() string { return i.Category.ID }

// Sidebar lists the catalog categories
type Sidebar struct {
	list    list.Model
	focused bool
	width   int
	height  int
}

// NewSidebar creates a sidebar holding every category, "all" selected
func NewSidebar() Sidebar {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.White).
		Background(styles.SlateLight).
		Padding(0, 1)
	delegate.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(styles.LightGray).
		Padding(0, 1)

	cats := catalog.Categories()
	items := make([]list.Item, len(cats))
	for i, c := range cats {
		items[i] = CategoryItem{Category: c}
	}

	l := list.New(items, delegate, 0, 0)
	l.Title = "Categorias"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(styles.MarqueeRed).
		Bold(true).
		Padding(0, 1)

	return Sidebar{list: l}
}

// SetSize updates the component dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(max(0, width-BorderWidth), max(0, height-BorderHeight))
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s Sidebar) IsFocused() bool {
	return s.focused
}

// Select moves the cursor to the category with the given ID
func (s *Sidebar) Select(id string) {
	for i, it := range s.list.Items() {
		if it.(CategoryItem).Category.ID == id {
			s.list.Select(i)
			return
		}
	}
}

// Selected returns the category under the cursor
func (s Sidebar) Selected() catalog.Category {
	if it, ok := s.list.SelectedItem().(CategoryItem); ok {
		return it.Category
	}
	return catalog.Categories()[0]
}

// Update moves the cursor. It reports whether the selection changed.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, bool) {
	if !s.focused {
		return s, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, false
	}

	before := s.list.Index()
	switch {
	case key.Matches(keyMsg, GridKeys.Down):
		s.list.CursorDown()
	case key.Matches(keyMsg, GridKeys.Up):
		s.list.CursorUp()
	case key.Matches(keyMsg, GridKeys.Home):
		s.list.Select(0)
	case key.Matches(keyMsg, GridKeys.End):
		s.list.Select(len(s.list.Items()) - 1)
	}
	return s, s.list.Index() != before
}

// View renders the component
func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(0, s.width-frameW)).
		Height(max(0, s.height-frameH)).
		Render(s.list.View())
}
