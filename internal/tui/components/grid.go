package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for the item grid
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Title line at the top of the content area
	TitleLines = 1

	// Scroll indicator line at the bottom
	IndicatorLines = 1

	// Grid cells: 3 content lines plus border
	CellWidth  = 28
	CellHeight = 5
)

// ItemGrid shows catalog items as a grid of cards or a list of rows.
// The items arrive already derived; the grid never reorders them. An
// optional quick filter narrows the rows with fuzzy title matching.
type ItemGrid struct {
	items  []domain.Item
	layout catalog.Layout

	// Selection
	cursor int
	offset int // first visible row (list) or grid row

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	// Quick filter
	filterEnabled bool
	filterActive  bool
	filterInput   textinput.Model
	filterQuery   string
	filteredIdx   []int // indices into items
}

// NewItemGrid creates an empty grid
func NewItemGrid() ItemGrid {
	ti := textinput.New()
	ti.Placeholder = "filtrar por título..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return ItemGrid{
		layout:      catalog.LayoutGrid,
		filterInput: ti,
	}
}

// SetItems replaces the displayed items. The cursor stays on the same item
// when it is still present.
func (g *ItemGrid) SetItems(items []domain.Item) {
	var selectedID string
	if it, ok := g.Selected(); ok {
		selectedID = it.ID
	}

	g.items = items
	if g.filterActive {
		g.applyFilter()
	}

	g.cursor = 0
	if selectedID != "" {
		for i := 0; i < g.itemCount(); i++ {
			if g.items[g.mapIndex(i)].ID == selectedID {
				g.cursor = i
				break
			}
		}
	}
	g.ensureVisible()
}

// Items returns the items currently passed to the grid
func (g ItemGrid) Items() []domain.Item {
	return g.items
}

// SetLayout switches between cards and rows
func (g *ItemGrid) SetLayout(layout catalog.Layout) {
	g.layout = layout
	g.offset = 0
	g.ensureVisible()
}

// Layout returns the current layout
func (g ItemGrid) Layout() catalog.Layout {
	return g.layout
}

// SetSize updates the component dimensions
func (g *ItemGrid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.ensureVisible()
}

// SetTitle sets the line shown above the items
func (g *ItemGrid) SetTitle(title string) {
	g.title = title
}

// SetFocused sets the focus state
func (g *ItemGrid) SetFocused(focused bool) {
	g.focused = focused
}

// IsFocused returns the focus state
func (g ItemGrid) IsFocused() bool {
	return g.focused
}

// EnableFilter allows the quick filter to be opened with "/"
func (g *ItemGrid) EnableFilter(enabled bool) {
	g.filterEnabled = enabled
	if !enabled {
		g.clearFilter()
	}
}

// Cursor returns the current cursor position
func (g ItemGrid) Cursor() int {
	return g.cursor
}

// Len returns the number of visible items after the quick filter
func (g ItemGrid) Len() int {
	return g.itemCount()
}

// Selected returns the item under the cursor
func (g ItemGrid) Selected() (domain.Item, bool) {
	if g.itemCount() == 0 || g.cursor >= g.itemCount() {
		return domain.Item{}, false
	}
	return g.items[g.mapIndex(g.cursor)], true
}

func (g ItemGrid) itemCount() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.items)
}

// mapIndex maps a cursor position to the index in items
func (g ItemGrid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

// columns is the number of cards per grid row, 1 in list layout
func (g ItemGrid) columns() int {
	if g.layout == catalog.LayoutList {
		return 1
	}
	interior := g.width - BorderWidth - HorizontalPadding
	cols := interior / CellWidth
	if cols < 1 {
		cols = 1
	}
	return cols
}

// visibleRows is how many rows (list) or card rows (grid) fit
func (g ItemGrid) visibleRows() int {
	interior := g.height - BorderHeight - TitleLines - IndicatorLines
	if g.filterActive {
		interior--
	}
	rows := interior
	if g.layout != catalog.LayoutList {
		rows = interior / CellHeight
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureVisible keeps the cursor row inside the viewport
func (g *ItemGrid) ensureVisible() {
	count := g.itemCount()
	if g.cursor >= count {
		g.cursor = count - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	row := g.cursor / g.columns()
	rows := g.visibleRows()
	if row < g.offset {
		g.offset = row
	}
	if row >= g.offset+rows {
		g.offset = row - rows + 1
	}
}

// IsFiltering returns true if the quick filter is shown
func (g ItemGrid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if the filter input has focus
func (g ItemGrid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ClearFilter hides the quick filter and shows all items
func (g *ItemGrid) ClearFilter() {
	g.clearFilter()
}

func (g *ItemGrid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
}

// applyFilter narrows items to fuzzy title matches, best match first
func (g *ItemGrid) applyFilter() {
	query := g.filterInput.Value()
	g.filterQuery = query

	if query == "" {
		g.filteredIdx = nil
		return
	}

	titles := make([]string, len(g.items))
	for i, it := range g.items {
		titles[i] = strings.ToLower(it.Title)
	}
	matches := fuzzy.Find(strings.ToLower(query), titles)

	g.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		g.filteredIdx[i] = match.Index
	}

	g.cursor = 0
	g.offset = 0
}

// Init initializes the component
func (g ItemGrid) Init() tea.Cmd {
	return nil
}

// Update handles navigation and the quick filter
func (g ItemGrid) Update(msg tea.Msg) (ItemGrid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	if g.IsFilterTyping() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				g.clearFilter()
				return g, nil
			case "enter":
				// Keep the matches, go back to navigation
				g.filterInput.Blur()
				return g, nil
			case "backspace":
				if g.filterInput.Value() == "" {
					g.clearFilter()
					return g, nil
				}
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return g, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}

	if g.filterEnabled {
		switch {
		case key.Matches(keyMsg, GridKeys.Filter):
			g.filterActive = true
			return g, g.filterInput.Focus()
		case g.filterActive && key.Matches(keyMsg, GridKeys.Escape):
			g.clearFilter()
			return g, nil
		}
	}

	count := g.itemCount()
	if count == 0 {
		return g, nil
	}
	cols := g.columns()

	switch {
	case key.Matches(keyMsg, GridKeys.Down):
		if g.cursor+cols < count {
			g.cursor += cols
		} else if g.cursor/cols < (count-1)/cols {
			g.cursor = count - 1
		}
	case key.Matches(keyMsg, GridKeys.Up):
		if g.cursor-cols >= 0 {
			g.cursor -= cols
		}
	case key.Matches(keyMsg, GridKeys.Right):
		if cols > 1 && g.cursor < count-1 {
			g.cursor++
		}
	case key.Matches(keyMsg, GridKeys.Left):
		if cols > 1 && g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(keyMsg, GridKeys.Home):
		g.cursor = 0
	case key.Matches(keyMsg, GridKeys.End):
		g.cursor = count - 1
	case key.Matches(keyMsg, GridKeys.HalfDown):
		g.cursor += cols * max(1, g.visibleRows()/2)
	case key.Matches(keyMsg, GridKeys.HalfUp):
		g.cursor -= cols * max(1, g.visibleRows()/2)
	}
	g.ensureVisible()
	return g, nil
}

// View renders the component
func (g ItemGrid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(g.title, g.width-BorderWidth-HorizontalPadding)))
	b.WriteString("\n")
	if g.filterActive {
		b.WriteString(g.renderFilterBar())
		b.WriteString("\n")
	}
	if g.layout == catalog.LayoutList {
		b.WriteString(g.renderList())
	} else {
		b.WriteString(g.renderGrid())
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(0, g.width-frameW)).
		Height(max(0, g.height-frameH)).
		Padding(0, 1).
		Render(b.String())
}

func (g ItemGrid) renderList() string {
	width := g.width - BorderWidth - HorizontalPadding - 2
	rows := g.visibleRows()
	count := g.itemCount()

	var lines []string
	for i := g.offset; i < count && i < g.offset+rows; i++ {
		lines = append(lines, renderItemRow(g.items[g.mapIndex(i)], i == g.cursor && g.focused, width))
	}
	lines = append(lines, g.scrollIndicator(count, rows))
	return strings.Join(lines, "\n")
}

func (g ItemGrid) renderGrid() string {
	cols := g.columns()
	rows := g.visibleRows()
	count := g.itemCount()

	var gridRows []string
	for r := g.offset; r < g.offset+rows; r++ {
		start := r * cols
		if start >= count {
			break
		}
		var cells []string
		for i := start; i < start+cols && i < count; i++ {
			cells = append(cells, renderItemCard(g.items[g.mapIndex(i)], i == g.cursor && g.focused))
		}
		gridRows = append(gridRows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	gridRows = append(gridRows, g.scrollIndicator((count+cols-1)/cols, rows))
	return strings.Join(gridRows, "\n")
}

func (g ItemGrid) scrollIndicator(total, visible int) string {
	if total <= visible {
		return ""
	}
	var parts []string
	if g.offset > 0 {
		parts = append(parts, "↑ mais")
	}
	if g.offset+visible < total {
		parts = append(parts, "↓ mais")
	}
	return styles.DimStyle.Render(strings.Join(parts, "  "))
}

func (g ItemGrid) renderFilterBar() string {
	input := g.filterInput.View()
	if g.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.items)))
}

// renderItemRow renders one list row: title (year), genre, rating, duration
func renderItemRow(it domain.Item, selected bool, width int) string {
	style := styles.NormalItemStyle
	if selected {
		style = styles.SelectedItemStyle
	}

	meta := fmt.Sprintf("%-18s ★ %s  %s", styles.Truncate(it.Genre, 18), it.FormattedRating(), it.Duration)
	titleWidth := width - lipgloss.Width(meta) - 3
	title := it.Title
	if it.ReleaseYear > 0 {
		title = fmt.Sprintf("%s (%d)", it.Title, it.ReleaseYear)
	}
	title = styles.Pad(styles.Truncate(title, titleWidth), titleWidth)

	return style.Width(max(0, width)).Render(title + " " + meta)
}

// renderItemCard renders one grid card
func renderItemCard(it domain.Item, selected bool) string {
	style := styles.GridCellStyle
	if selected {
		style = styles.GridCellSelectedStyle
	}
	inner := CellWidth - BorderWidth - HorizontalPadding

	sub := it.Genre
	if it.ReleaseYear > 0 {
		sub = fmt.Sprintf("%d · %s", it.ReleaseYear, it.Genre)
	}
	lines := []string{
		styles.TitleStyle.Render(styles.Truncate(it.Title, inner)),
		styles.SubtitleStyle.Render(styles.Truncate(sub, inner)),
		styles.RatingStyle.Render("★ "+it.FormattedRating()) + styles.DimStyle.Render(styles.Truncate("  "+it.Duration, inner-6)),
	}
	return style.Width(inner + HorizontalPadding).Render(strings.Join(lines, "\n"))
}
