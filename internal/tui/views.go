package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/navigation"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Carregando..."
	}

	if m.Session.Loading() {
		loading := m.spinner.View() + " " + styles.DimStyle.Render("Carregando dados...")
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, loading)
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	switch m.nav.Page() {
	case navigation.Detail:
		body = m.renderDetail()
	case navigation.Admin:
		body = m.renderAdmin()
	case navigation.Login:
		body = m.renderLogin()
	default:
		body = m.renderBrowse()
	}

	bodyHeight := m.Height - HeaderHeight - FooterHeight
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)

	// Overlays
	switch {
	case m.form.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.form.View())
	case m.confirm.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	case m.sortModal.IsVisible():
		view = lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.sortModal.View())
	}
	return view
}

func (m Model) renderHeader() string {
	logo := styles.LogoStyle.Render("MARQUEE")

	who := styles.DimStyle.Render("visitante")
	if s, ok := m.Session.Current(); ok {
		who = styles.AccentStyle.Render(s.Email)
	}

	gap := m.Width - lipgloss.Width(logo) - lipgloss.Width(who)
	if gap < 1 {
		gap = 1
	}
	return logo + strings.Repeat(" ", gap) + who + "\n"
}

// renderFooter shows progress or the last status on the left and page
// hints on the right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.busy || (m.detailLoading && m.nav.Page() == navigation.Detail):
		left = m.spinner.View() + " " + styles.DimStyle.Render("Aguarde...")
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	}

	right := m.pageHints()

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.Width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) pageHints() string {
	switch m.nav.Page() {
	case navigation.Detail:
		return styles.RenderHelp("p", "assistir", "esc", "voltar", "?", "ajuda")
	case navigation.Admin:
		return styles.RenderHelp("n", "novo", "e", "editar", "x", "excluir", "L", "sair", "esc", "voltar")
	case navigation.Login:
		return styles.RenderHelp("enter", "entrar", "esc", "voltar")
	default:
		return styles.RenderHelp("/", "buscar", "o", "ordenar", "v", "layout", "a", "admin", "?", "ajuda")
	}
}

func (m Model) renderBrowse() string {
	var rows []string

	if m.searching || m.view.Search != "" {
		rows = append(rows, m.search.View())
	} else {
		rows = append(rows, styles.DimStyle.Render("/ Buscar filmes..."))
	}

	if err := m.Catalog.Err(); err != nil {
		banner := "Erro ao carregar filmes: " + userMessage(err) + " (r para tentar novamente)"
		rows = append(rows, styles.ErrorBannerStyle.Width(m.Width).Render(styles.Truncate(banner, m.Width-2)))
	}

	var main string
	switch {
	case !m.Catalog.Loaded() && m.Catalog.Err() == nil:
		main = m.spinner.View() + " " + styles.DimStyle.Render("Carregando filmes...")
	case m.browseView.Empty() == catalog.EmptyCatalog:
		main = styles.DimStyle.Render("Nenhum filme cadastrado ainda.")
	case m.browseView.Empty() == catalog.EmptyNoMatch:
		main = styles.DimStyle.Render("Nenhum filme encontrado")
	default:
		main = m.grid.View()
	}
	if m.browseView.Empty() != catalog.NotEmpty || !m.Catalog.Loaded() {
		main = lipgloss.Place(m.Width-SidebarWidth, m.Height-HeaderHeight-FooterHeight-SearchHeight,
			lipgloss.Center, lipgloss.Center, main)
	}

	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderDetail() string {
	width := min(m.Width-4, 100)

	if m.detail == nil {
		if m.detailLoading {
			return m.spinner.View() + " " + styles.DimStyle.Render("Carregando filme...")
		}
		msg := "Filme não encontrado"
		if m.detailErr != nil {
			msg = userMessage(m.detailErr)
		}
		return styles.ErrorStyle.Render(msg) + "\n\n" + styles.DimStyle.Render("esc para voltar")
	}

	it := *m.detail
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(it.Title))
	b.WriteString("\n")

	var meta []string
	if it.ReleaseYear > 0 {
		meta = append(meta, fmt.Sprintf("%d", it.ReleaseYear))
	}
	if it.Genre != "" {
		meta = append(meta, it.Genre)
	}
	if it.Duration != "" {
		meta = append(meta, it.Duration)
	}
	meta = append(meta, styles.RatingStyle.Render("★ "+it.FormattedRating()))
	b.WriteString(styles.SubtitleStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n\n")

	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%s visualizações · %s curtidas · adicionado %s",
		FormatViews(it.ViewCount()), FormatViews(it.LikeCount()), FormatTimeAgo(it.CreatedAt, m.now()))))
	b.WriteString("\n\n")

	if it.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(it.Description))
		b.WriteString("\n\n")
	}

	if it.EmbedURL == "" {
		b.WriteString(styles.DimBadgeStyle.Render("sem vídeo"))
	} else {
		b.WriteString(styles.BadgeStyle.Render("▶ p para assistir"))
	}

	if m.detailErr != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorStyle.Render(userMessage(m.detailErr)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderAdmin() string {
	header := styles.TitleStyle.Render("Painel Administrativo") + "\n" +
		styles.SubtitleStyle.Render("Gerencie sua coleção de filmes")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		renderStatCard("Total de Filmes", fmt.Sprintf("%d", m.stats.Total)),
		renderStatCard("Gêneros", fmt.Sprintf("%d", m.stats.Genres)),
		renderStatCard("Avaliação Média", fmt.Sprintf("%.1f", m.stats.AverageRating)),
	)

	var list string
	if m.adminGrid.Len() == 0 && !m.adminGrid.IsFiltering() {
		list = styles.DimStyle.Render("Nenhum filme cadastrado ainda.")
	} else {
		list = m.adminGrid.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, cards, list)
}

func renderStatCard(label, value string) string {
	return styles.StatCardStyle.Render(
		styles.DimStyle.Render(label) + "\n" + styles.AccentStyle.Render(value))
}

func (m Model) renderLogin() string {
	return lipgloss.Place(m.Width, m.Height-HeaderHeight-FooterHeight,
		lipgloss.Center, lipgloss.Center, m.login.View())
}

func (m Model) renderHelp() string {
	help := `
NAVEGAÇÃO                       CATÁLOGO
  j/k        Cima/baixo            /      Buscar
  h/l        Esquerda/direita      o      Ordenar
  g/Home     Primeiro item         v      Lista ou grade
  G/End      Último item           r      Recarregar
  Tab        Categorias/filmes     Enter  Detalhes
  Esc        Voltar                p      Assistir

ADMINISTRAÇÃO                   OUTROS
  a          Abrir painel          q      Sair
  n          Novo filme            ?      Esta ajuda
  e          Editar filme
  x          Excluir filme
  L          Encerrar sessão

Pressione qualquer tecla para voltar...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
