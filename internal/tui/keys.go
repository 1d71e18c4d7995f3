package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the page-level key bindings
type KeyMap struct {
	// Navigation
	Enter      key.Binding
	Back       key.Binding
	SwitchPane key.Binding

	// Browse
	Search       key.Binding
	Sort         key.Binding
	ToggleLayout key.Binding
	Refresh      key.Binding
	Admin        key.Binding

	// Detail
	Play key.Binding

	// Admin
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	SignOut key.Binding

	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "abrir"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "voltar"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "categorias/filmes"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "buscar"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "ordenar"),
		),
		ToggleLayout: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "grade/lista"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "atualizar"),
		),
		Admin: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "admin"),
		),
		Play: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "assistir"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "adicionar"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "editar"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "excluir"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "sair"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "fechar"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "ajuda"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
