package components

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Form field indexes
const (
	FieldTitle = iota
	FieldDescription
	FieldEmbedURL
	FieldCoverURL
	FieldGenre
	FieldYear
	FieldDuration
	FieldRating
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Título",
	"Descrição",
	"URL do vídeo",
	"URL da capa",
	"Gênero",
	"Ano",
	"Duração",
	"Avaliação",
}

const formLabelWidth = 14

// FormAction is what the user asked the form to do
type FormAction int

const (
	FormNone FormAction = iota
	FormSubmit
	FormCancel
)

// ItemForm edits the writable fields of an item. It creates a new item
// when opened without one and edits an existing one otherwise.
type ItemForm struct {
	visible    bool
	editing    *domain.Item // nil when adding
	inputs     []textinput.Model
	focus      int
	err        string
	submitting bool
}

// NewItemForm creates a hidden form
func NewItemForm() ItemForm {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 300
		ti.Width = 40
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		inputs[i] = ti
	}
	inputs[FieldTitle].CharLimit = 120
	inputs[FieldGenre].Placeholder = "Ação, Drama... (C-n alterna)"
	inputs[FieldYear].Placeholder = "2024"
	inputs[FieldYear].CharLimit = 4
	inputs[FieldDuration].Placeholder = "2h 15min"
	inputs[FieldRating].Placeholder = "0.0 - 10.0"
	inputs[FieldRating].CharLimit = 4
	inputs[FieldEmbedURL].Placeholder = "https://..."
	inputs[FieldCoverURL].Placeholder = "https://..."

	return ItemForm{inputs: inputs}
}

// Open shows the form. With a nil item the form is empty and submitting
// creates a new item.
func (f *ItemForm) Open(item *domain.Item) tea.Cmd {
	f.visible = true
	f.err = ""
	f.submitting = false
	f.focus = FieldTitle
	f.editing = nil
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}

	if item != nil {
		cp := *item
		f.editing = &cp
		f.inputs[FieldTitle].SetValue(item.Title)
		f.inputs[FieldDescription].SetValue(item.Description)
		f.inputs[FieldEmbedURL].SetValue(item.EmbedURL)
		f.inputs[FieldCoverURL].SetValue(item.CoverImageURL)
		f.inputs[FieldGenre].SetValue(item.Genre)
		if item.ReleaseYear > 0 {
			f.inputs[FieldYear].SetValue(strconv.Itoa(item.ReleaseYear))
		}
		f.inputs[FieldDuration].SetValue(item.Duration)
		f.inputs[FieldRating].SetValue(item.FormattedRating())
	}
	return f.focusField(FieldTitle)
}

// Hide closes the form
func (f *ItemForm) Hide() {
	f.visible = false
	f.submitting = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// IsVisible returns whether the form is shown
func (f ItemForm) IsVisible() bool {
	return f.visible
}

// Editing returns the item being edited, false when adding
func (f ItemForm) Editing() (domain.Item, bool) {
	if f.editing == nil {
		return domain.Item{}, false
	}
	return *f.editing, true
}

// Focused returns the index of the focused field
func (f ItemForm) Focused() int {
	return f.focus
}

// Value returns the raw text of a field
func (f ItemForm) Value(field int) string {
	return f.inputs[field].Value()
}

// SetValue replaces the text of a field
func (f *ItemForm) SetValue(field int, value string) {
	f.inputs[field].SetValue(value)
}

// SetError shows a message under the fields. The form stays editable.
func (f *ItemForm) SetError(msg string) {
	f.err = msg
	f.submitting = false
}

// SetSubmitting marks a save in flight
func (f *ItemForm) SetSubmitting(submitting bool) {
	f.submitting = submitting
	if submitting {
		f.err = ""
	}
}

// Submitting reports whether a save is in flight
func (f ItemForm) Submitting() bool {
	return f.submitting
}

// Draft validates the fields and returns the item they describe. When
// editing, the counters of the original item are carried over.
func (f ItemForm) Draft() (domain.ItemDraft, error) {
	d := domain.ItemDraft{
		Title:         strings.TrimSpace(f.inputs[FieldTitle].Value()),
		Description:   strings.TrimSpace(f.inputs[FieldDescription].Value()),
		EmbedURL:      strings.TrimSpace(f.inputs[FieldEmbedURL].Value()),
		CoverImageURL: strings.TrimSpace(f.inputs[FieldCoverURL].Value()),
		Genre:         strings.TrimSpace(f.inputs[FieldGenre].Value()),
		Duration:      strings.TrimSpace(f.inputs[FieldDuration].Value()),
	}
	if d.Title == "" {
		return domain.ItemDraft{}, fmt.Errorf("%w: título é obrigatório", domain.ErrValidation)
	}

	if year := strings.TrimSpace(f.inputs[FieldYear].Value()); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil || n < 1888 || n > 2100 {
			return domain.ItemDraft{}, fmt.Errorf("%w: ano inválido", domain.ErrValidation)
		}
		d.ReleaseYear = n
	}

	if rating := strings.TrimSpace(f.inputs[FieldRating].Value()); rating != "" {
		r, err := strconv.ParseFloat(strings.ReplaceAll(rating, ",", "."), 64)
		if err != nil || r < 0 || r > 10 {
			return domain.ItemDraft{}, fmt.Errorf("%w: avaliação deve estar entre 0 e 10", domain.ErrValidation)
		}
		d.Rating = r
	}

	if f.editing != nil {
		d.Views = f.editing.Views
		d.Likes = f.editing.Likes
	}
	return d, nil
}

// Suggestion proposes a known genre when the typed one does not resolve
// to a category
func (f ItemForm) Suggestion() (string, bool) {
	return catalog.SuggestGenre(f.inputs[FieldGenre].Value())
}

func (f *ItemForm) focusField(i int) tea.Cmd {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.focus = (i + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// cycleGenre replaces the genre with the next offered choice
func (f *ItemForm) cycleGenre() {
	choices := catalog.GenreChoices()
	next := 0
	if i := slices.Index(choices, strings.TrimSpace(f.inputs[FieldGenre].Value())); i >= 0 {
		next = (i + 1) % len(choices)
	}
	f.inputs[FieldGenre].SetValue(choices[next])
	f.inputs[FieldGenre].CursorEnd()
}

// Update handles input, returns (form, cmd, action)
func (f ItemForm) Update(msg tea.Msg) (ItemForm, tea.Cmd, FormAction) {
	if !f.visible {
		return f, nil, FormNone
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FormKeys.Cancel):
			return f, nil, FormCancel
		case key.Matches(keyMsg, FormKeys.Submit):
			if f.submitting {
				return f, nil, FormNone
			}
			return f, nil, FormSubmit
		case keyMsg.String() == "enter":
			if f.focus == fieldCount-1 {
				if f.submitting {
					return f, nil, FormNone
				}
				return f, nil, FormSubmit
			}
			return f, f.focusField(f.focus + 1), FormNone
		case key.Matches(keyMsg, FormKeys.Next):
			return f, f.focusField(f.focus + 1), FormNone
		case key.Matches(keyMsg, FormKeys.Prev):
			return f, f.focusField(f.focus - 1), FormNone
		case f.focus == FieldGenre && key.Matches(keyMsg, FormKeys.NextGenre):
			f.cycleGenre()
			return f, nil, FormNone
		case f.focus == FieldGenre && key.Matches(keyMsg, FormKeys.AcceptSuggest):
			if s, ok := f.Suggestion(); ok {
				f.inputs[FieldGenre].SetValue(s)
				f.inputs[FieldGenre].CursorEnd()
			}
			return f, nil, FormNone
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, FormNone
}

// View renders the form
func (f ItemForm) View() string {
	if !f.visible {
		return ""
	}

	title := "Adicionar Filme"
	if f.editing != nil {
		title = "Editar Filme"
	}

	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render(title))
	for i := range f.inputs {
		label := styles.Pad(fieldLabels[i], formLabelWidth)
		if i == f.focus {
			label = styles.AccentStyle.Render(label)
		} else {
			label = styles.SubtitleStyle.Render(label)
		}
		rows = append(rows, label+f.inputs[i].View())

		if i == FieldGenre {
			if s, ok := f.Suggestion(); ok {
				hint := fmt.Sprintf("Você quis dizer %q? (C-a)", s)
				rows = append(rows, strings.Repeat(" ", formLabelWidth)+styles.DimStyle.Render(hint))
			}
		}
	}

	rows = append(rows, "")
	switch {
	case f.submitting:
		rows = append(rows, styles.DimStyle.Render("Salvando..."))
	case f.err != "":
		rows = append(rows, styles.ErrorStyle.Render(f.err))
	default:
		rows = append(rows, styles.RenderHelp("tab", "próximo", "C-s", "salvar", "esc", "cancelar"))
	}

	return styles.ModalStyle.Render(strings.Join(rows, "\n"))
}
