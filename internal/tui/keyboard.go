package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/navigation"
	"github.com/mmcdole/marquee/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.ForceQuit) {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Route to the active modal if any
	if m.confirm.IsVisible() {
		if _, confirmed := m.confirm.HandleKey(msg); confirmed {
			return m.deleteConfirmed()
		}
		return m, nil
	}
	if m.sortModal.IsVisible() {
		if _, sel := m.sortModal.HandleKey(msg); sel != nil {
			m.view = m.view.WithSort(*sel)
			m.refreshViews()
		}
		return m, nil
	}
	if m.form.IsVisible() {
		return m.handleFormKey(msg)
	}

	// Nothing is gated correctly until the session is known
	if m.Session.Loading() {
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.nav.Page() {
	case navigation.Detail:
		return m.handleDetailKey(msg)
	case navigation.Admin:
		return m.handleAdminKey(msg)
	case navigation.Login:
		return m.handleLoginKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, Keys.SwitchPane):
		if m.focus == paneGrid {
			m.setFocus(paneSidebar)
		} else {
			m.setFocus(paneGrid)
		}
		return m, nil
	case key.Matches(msg, Keys.Search):
		m.searching = true
		m.setFocus(paneGrid)
		return m, m.search.Focus()
	case key.Matches(msg, Keys.Sort):
		m.sortModal.Show(m.view.Sort)
		return m, nil
	case key.Matches(msg, Keys.ToggleLayout):
		m.view = m.view.ToggleLayout()
		m.grid.SetLayout(m.view.Layout)
		return m, nil
	case key.Matches(msg, Keys.Refresh):
		return m, LoadCatalogCmd(m.Catalog, m.pageSeq)
	case key.Matches(msg, Keys.Admin):
		return m.requestAdmin()
	case key.Matches(msg, Keys.Back) && m.view.Search != "":
		m.clearSearch()
		return m, nil
	}

	if m.focus == paneSidebar {
		if key.Matches(msg, Keys.Enter) {
			m.setFocus(paneGrid)
			return m, nil
		}
		var changed bool
		m.sidebar, changed = m.sidebar.Update(msg)
		if changed {
			m.view = m.view.WithCategory(m.sidebar.Selected().ID)
			m.search.SetValue("")
			m.refreshViews()
		}
		return m, nil
	}

	if key.Matches(msg, Keys.Enter) {
		if it, ok := m.grid.Selected(); ok {
			prev := m.navState()
			m.nav.SelectItem(it.ID)
			return m, m.afterNav(prev)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

// handleSearchKey edits the search text. Every keystroke re-runs the
// pipeline; a non-empty search shows all categories.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearSearch()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Search {
		m.view = m.view.WithSearch(m.search.Value())
		if m.view.Search != "" {
			m.sidebar.Select(catalog.CategoryAll)
		}
		m.refreshViews()
	}
	return m, cmd
}

func (m *Model) clearSearch() {
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.view = m.view.WithSearch("")
	m.refreshViews()
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
	case key.Matches(msg, Keys.Back):
		prev := m.navState()
		m.nav.Back()
		return m, m.afterNav(prev)
	case key.Matches(msg, Keys.Play):
		if m.detail != nil {
			return m, PlayItemCmd(m.Launcher, *m.detail)
		}
	case key.Matches(msg, Keys.Admin):
		return m.requestAdmin()
	}
	return m, nil
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adminGrid.IsFilterTyping() {
		var cmd tea.Cmd
		m.adminGrid, cmd = m.adminGrid.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, Keys.Add):
		if m.nav.OpenAddForm() {
			return m, m.form.Open(nil)
		}
		return m, nil
	case key.Matches(msg, Keys.Edit):
		if it, ok := m.adminGrid.Selected(); ok {
			return m, m.form.Open(&it)
		}
		return m, nil
	case key.Matches(msg, Keys.Delete):
		if it, ok := m.adminGrid.Selected(); ok {
			m.confirm.Show("Excluir filme",
				fmt.Sprintf("Tem certeza que deseja excluir \"%s\"?", it.Title), it.ID)
		}
		return m, nil
	case key.Matches(msg, Keys.SignOut):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, SignOutCmd(m.Session)
	case key.Matches(msg, Keys.Refresh):
		return m, LoadCatalogCmd(m.Catalog, m.pageSeq)
	case msg.String() == "esc" && m.adminGrid.IsFiltering():
		// handled by the grid below
	case key.Matches(msg, Keys.Back):
		prev := m.navState()
		m.nav.Home()
		return m, m.afterNav(prev)
	}

	var cmd tea.Cmd
	m.adminGrid, cmd = m.adminGrid.Update(msg)
	return m, cmd
}

func (m Model) deleteConfirmed() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	id := m.confirm.Payload()
	title := id
	if it, ok := m.Catalog.Lookup(id); ok {
		title = it.Title
	}
	m.busy = true
	return m, DeleteItemCmd(m.Catalog, m.pageSeq, id, title)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var action components.FormAction
	m.form, cmd, action = m.form.Update(msg)

	switch action {
	case components.FormCancel:
		m.closeForm()
		return m, nil
	case components.FormSubmit:
		return m.submitForm()
	}
	return m, cmd
}

// submitForm validates the form and sends a create or a minimal update.
// The form stays open until the store answers.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	draft, err := m.form.Draft()
	if err != nil {
		m.form.SetError(userMessage(err))
		return m, nil
	}

	if prev, editing := m.form.Editing(); editing {
		patch := domain.Diff(prev, draft)
		if patch.IsEmpty() {
			m.closeForm()
			return m, m.setStatus("Nenhuma alteração", false)
		}
		m.busy = true
		m.form.SetSubmitting(true)
		return m, UpdateItemCmd(m.Catalog, m.pageSeq, prev.ID, patch)
	}

	m.busy = true
	m.form.SetSubmitting(true)
	return m, CreateItemCmd(m.Catalog, m.pageSeq, draft)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		prev := m.navState()
		m.nav.CancelLogin()
		return m, m.afterNav(prev)
	}

	var cmd tea.Cmd
	var submitted bool
	m.login, cmd, submitted = m.login.Update(msg)
	if !submitted || m.busy {
		return m, cmd
	}

	email, password := m.login.Credentials()
	m.busy = true
	m.login.SetSubmitting(true)
	return m, SignInCmd(m.Session, m.pageSeq, email, password)
}

func (m Model) requestAdmin() (tea.Model, tea.Cmd) {
	prev := m.navState()
	m.nav.RequestAdmin()
	return m, m.afterNav(prev)
}
