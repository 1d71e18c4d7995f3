package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/navigation"
	"github.com/mmcdole/marquee/internal/session"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Launcher opens a playable URL outside the terminal
type Launcher interface {
	Launch(rawURL string) error
}

// Options are the UI defaults taken from the configuration
type Options struct {
	Layout catalog.Layout
	Sort   catalog.SortKey
	Logger *slog.Logger
}

// Layout sizes
const (
	HeaderHeight  = 2
	FooterHeight  = 1
	SearchHeight  = 1
	BannerHeight  = 1
	SidebarWidth  = 26
	AdminTopLines = 7 // title, subtitle, stat cards and list heading
	statusTimeout = 4 * time.Second
)

type pane int

const (
	paneGrid pane = iota
	paneSidebar
)

// navSnapshot is what afterNav compares to detect a page change
type navSnapshot struct {
	page     navigation.Page
	selected string
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Session  *session.Sync
	Catalog  *catalog.Cache
	Launcher Launcher

	events <-chan session.Snapshot
	nav    *navigation.Machine
	logger *slog.Logger
	now    func() time.Time

	// Browse
	view       catalog.ViewState
	sidebar    components.Sidebar
	grid       components.ItemGrid
	search     textinput.Model
	searching  bool
	focus      pane
	browseView catalog.View

	// Detail
	detail        *domain.Item
	detailErr     error
	detailLoading bool

	// Admin
	adminGrid components.ItemGrid
	stats     catalog.Stats

	// Modals
	sortModal components.SortModal
	confirm   components.ConfirmModal
	form      components.ItemForm
	login     components.LoginForm
	showHelp  bool

	spinner spinner.Model

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// busy is set while a mutating or session command is outstanding
	busy bool
	// pageSeq changes on every page change; stale results are ignored
	pageSeq uint64

	StatusMsg   string
	StatusIsErr bool
	statusID    int
}

// NewModel creates the application model. events delivers session
// snapshots, normally from a SessionObserver registered on s.
func NewModel(s *session.Sync, c *catalog.Cache, l Launcher, events <-chan session.Snapshot, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	view := catalog.DefaultViewState()
	if opts.Layout != "" {
		view.Layout = opts.Layout
	}
	if opts.Sort != "" {
		view.Sort = opts.Sort
	}

	search := textinput.New()
	search.Placeholder = "Buscar filmes..."
	search.Prompt = "/ "
	search.PromptStyle = styles.FilterPromptStyle
	search.TextStyle = styles.FilterStyle
	search.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: 100 * time.Millisecond}
	sp.Style = styles.SpinnerStyle

	grid := components.NewItemGrid()
	grid.SetLayout(view.Layout)
	grid.SetFocused(true)

	adminGrid := components.NewItemGrid()
	adminGrid.SetLayout(catalog.LayoutList)
	adminGrid.EnableFilter(true)
	adminGrid.SetFocused(true)
	adminGrid.SetTitle("Filmes Cadastrados")

	m := Model{
		Session:   s,
		Catalog:   c,
		Launcher:  l,
		events:    events,
		nav:       navigation.NewMachine(s),
		logger:    logger,
		now:       time.Now,
		view:      view,
		sidebar:   components.NewSidebar(),
		grid:      grid,
		search:    search,
		adminGrid: adminGrid,
		sortModal: components.NewSortModal(),
		confirm:   components.NewConfirmModal(),
		form:      components.NewItemForm(),
		login:     components.NewLoginForm(),
		spinner:   sp,
	}
	m.refreshViews()
	return m
}

// Init starts the session query, the first catalog load and the session
// event listener
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		StartSessionCmd(m.Session),
		LoadCatalogCmd(m.Catalog, m.pageSeq),
		m.spinner.Tick,
	}
	if m.events != nil {
		cmds = append(cmds, WaitForSessionCmd(m.events))
	}
	return tea.Batch(cmds...)
}

// Page returns the active page
func (m Model) Page() navigation.Page {
	return m.nav.Page()
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case SessionStartedMsg:
		if msg.Err != nil {
			return m, m.setStatus(userMessage(msg.Err), true)
		}
		return m, nil

	case SessionChangedMsg:
		cmd := m.handleSessionChange(msg.Snapshot)
		if m.events == nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, WaitForSessionCmd(m.events))

	case SignInResultMsg:
		m.busy = false
		if msg.Seq != m.pageSeq || m.nav.Page() != navigation.Login {
			return m, nil
		}
		if msg.Err != nil {
			m.login.SetError(signInMessage(msg.Err))
			return m, nil
		}
		prev := m.navState()
		m.nav.LoginSucceeded()
		return m, tea.Batch(m.afterNav(prev), m.setStatus("Bem-vindo ao painel", false))

	case SignOutResultMsg:
		m.busy = false
		if msg.Err != nil {
			return m, m.setStatus("Não foi possível sair: "+userMessage(msg.Err), true)
		}
		prev := m.navState()
		m.nav.SignedOut()
		return m, tea.Batch(m.afterNav(prev), m.setStatus("Você saiu", false))

	case CatalogLoadedMsg:
		m.refreshViews()
		m.updateLayout()
		if msg.Err != nil && msg.Seq == m.pageSeq {
			return m, m.setStatus(userMessage(msg.Err), true)
		}
		return m, nil

	case ItemLoadedMsg:
		if msg.Seq != m.pageSeq {
			return m, nil
		}
		m.detailLoading = false
		if msg.Err != nil {
			m.detailErr = msg.Err
			if errors.Is(msg.Err, domain.ErrNotFound) {
				m.detail = nil
			}
			return m, nil
		}
		m.detailErr = nil
		m.detail = msg.Item
		return m, nil

	case ItemSavedMsg:
		m.busy = false
		m.refreshViews()
		if msg.Seq != m.pageSeq {
			return m, nil
		}
		if msg.Err != nil {
			m.form.SetError(userMessage(msg.Err))
			return m, nil
		}
		m.closeForm()
		if msg.Created {
			return m, m.setStatus(fmt.Sprintf("Filme %q adicionado", msg.Item.Title), false)
		}
		return m, m.setStatus(fmt.Sprintf("Filme %q atualizado", msg.Item.Title), false)

	case ItemDeletedMsg:
		m.busy = false
		m.refreshViews()
		if msg.Seq != m.pageSeq {
			return m, nil
		}
		if msg.Err != nil {
			return m, m.setStatus("Erro ao excluir: "+userMessage(msg.Err), true)
		}
		return m, m.setStatus(fmt.Sprintf("Filme %q excluído", msg.Title), false)

	case PlaybackStartedMsg:
		return m, m.setStatus("Abrindo "+msg.Title+"...", false)

	case ErrMsg:
		m.logger.Error("command failed", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(userMessage(msg.Err), true)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	// Cursor blinks and other input internals go to the focused input
	var cmd tea.Cmd
	switch {
	case m.form.IsVisible():
		m.form, cmd, _ = m.form.Update(msg)
	case m.nav.Page() == navigation.Login:
		m.login, cmd, _ = m.login.Update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// handleSessionChange leaves the admin console when the session ends
func (m *Model) handleSessionChange(snap session.Snapshot) tea.Cmd {
	if snap.Session != nil || m.nav.Page() != navigation.Admin {
		return nil
	}
	prev := m.navState()
	m.nav.SignedOut()
	return tea.Batch(m.afterNav(prev), m.setStatus("Sessão encerrada", false))
}

func (m Model) navState() navSnapshot {
	id, _ := m.nav.Selected()
	return navSnapshot{page: m.nav.Page(), selected: id}
}

// afterNav runs the entry actions of the page the machine moved to. It is
// a no-op when the page did not change.
func (m *Model) afterNav(prev navSnapshot) tea.Cmd {
	cur := m.navState()
	if cur == prev {
		return nil
	}
	m.pageSeq++
	m.confirm.Hide()
	m.sortModal.Hide()
	m.showHelp = false
	if cur.page != navigation.Admin {
		m.form.Hide()
	}
	m.updateLayout()

	switch cur.page {
	case navigation.Detail:
		m.detail = nil
		m.detailErr = nil
		if it, ok := m.Catalog.Lookup(cur.selected); ok {
			m.detail = &it
		}
		m.detailLoading = true
		return LoadItemCmd(m.Catalog, m.pageSeq, cur.selected)
	case navigation.Login:
		return m.login.Reset()
	case navigation.Admin:
		m.adminGrid.ClearFilter()
		m.refreshViews()
	case navigation.Browse:
		m.detail = nil
		m.detailErr = nil
		m.detailLoading = false
	}
	return nil
}

// refreshViews re-derives every item view from the cache
func (m *Model) refreshViews() {
	items := m.Catalog.Items()

	m.browseView = catalog.Derive(items, m.view)
	m.grid.SetItems(m.browseView.Items)
	m.grid.SetTitle(m.browseTitle())

	m.adminGrid.SetItems(items)
	m.stats = catalog.Summarize(items)
}

func (m Model) browseTitle() string {
	if m.view.Search != "" {
		return fmt.Sprintf("Resultados para %q · %d", m.view.Search, len(m.browseView.Items))
	}
	return fmt.Sprintf("%s · %s · %d", catalog.CategoryName(m.view.Category), m.view.Sort, len(m.browseView.Items))
}

// updateLayout recalculates component sizes
func (m *Model) updateLayout() {
	if !m.Ready {
		return
	}
	body := m.Height - HeaderHeight - FooterHeight

	browse := body - SearchHeight
	if m.Catalog.Err() != nil {
		browse -= BannerHeight
	}
	m.sidebar.SetSize(SidebarWidth, browse)
	m.grid.SetSize(m.Width-SidebarWidth, browse)
	m.adminGrid.SetSize(m.Width, body-AdminTopLines)
	m.search.Width = m.Width - 4
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	m.sidebar.SetFocused(p == paneSidebar)
	m.grid.SetFocused(p == paneGrid)
}

func (m *Model) closeForm() {
	m.form.Hide()
	m.nav.CloseAddForm()
}

// setStatus shows a message in the footer for a few seconds
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusID++
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusID, statusTimeout)
}

// userMessage turns a failure into a Portuguese status line
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Dados inválidos: " + detailOf(err)
	case errors.Is(err, domain.ErrNotFound):
		return "Filme não encontrado"
	case errors.Is(err, domain.ErrStore) && errors.Is(err, domain.ErrAuth):
		return "Sem permissão para alterar o catálogo"
	case errors.Is(err, domain.ErrStore):
		return "Não foi possível acessar o catálogo"
	case errors.Is(err, domain.ErrProvider):
		return "Serviço de autenticação indisponível"
	case errors.Is(err, domain.ErrAuth):
		return "Falha de autenticação"
	case errors.Is(err, adapter.ErrNoMedia):
		return "Este filme não tem vídeo disponível"
	default:
		return err.Error()
	}
}

func signInMessage(err error) string {
	if errors.Is(err, domain.ErrAuth) {
		return "E-mail ou senha incorretos"
	}
	return userMessage(err)
}

// detailOf returns the last segment of a wrapped error message
func detailOf(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
