package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/backend/memory"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/navigation"
	"github.com/mmcdole/marquee/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@marquee.local"
	testPassword = "segredo"
)

type testEnv struct {
	backend *memory.Backend
	session *session.Sync
	cache   *catalog.Cache
	obs     *SessionObserver
}

// newTestModel wires the model to the in-memory backend with the demo
// catalog already loaded. The session query runs only when started is set.
func newTestModel(t *testing.T, started bool) (Model, *testEnv) {
	t.Helper()
	logger := adapter.NullLogger()
	ctx := context.Background()

	b := memory.New(logger,
		memory.WithAccount(testEmail, testPassword),
		memory.WithItems(memory.DemoItems(time.Now())...),
	)
	s := session.NewSync(b, logger)
	t.Cleanup(s.Close)

	obs := NewSessionObserver()
	s.OnChange(obs.OnChange)

	c := catalog.NewCache(b, logger)
	_, err := c.List(ctx)
	require.NoError(t, err)

	if started {
		require.NoError(t, s.Start(ctx))
	}

	m := NewModel(s, c, nil, obs.Events(), Options{Logger: logger})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &testEnv{backend: b, session: s, cache: c, obs: obs}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends a key and returns the model with the command it produced
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	return next.(Model), cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// signIn walks through the login page and returns the model on Admin
func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(t, m, "a")
	require.Equal(t, navigation.Login, m.Page())

	m, _ = press(t, m, testEmail)
	m, _ = press(t, m, "tab")
	m, _ = press(t, m, testPassword)
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m = update(t, m, cmd())
	require.Equal(t, navigation.Admin, m.Page())
	assert.False(t, m.busy)
	return m
}

func TestKeysIgnoredWhileSessionLoading(t *testing.T) {
	m, env := newTestModel(t, false)

	m, _ = press(t, m, "a")
	assert.Equal(t, navigation.Browse, m.Page())
	assert.Contains(t, m.View(), "Carregando dados...")

	m = update(t, m, StartSessionCmd(env.session)())
	m, _ = press(t, m, "a")
	assert.Equal(t, navigation.Login, m.Page())
}

func TestAdminRequiresSignIn(t *testing.T) {
	m, _ := newTestModel(t, true)

	m = signIn(t, m)
	assert.Contains(t, m.View(), "Painel Administrativo")
	assert.Contains(t, m.View(), "Total de Filmes")

	m, _ = press(t, m, "esc")
	assert.Equal(t, navigation.Browse, m.Page())

	// Signed in now, so admin opens directly
	m, _ = press(t, m, "a")
	assert.Equal(t, navigation.Admin, m.Page())
}

func TestLoginCancelReturnsToBrowse(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, _ = press(t, m, "a")
	require.Equal(t, navigation.Login, m.Page())

	m, _ = press(t, m, "esc")
	assert.Equal(t, navigation.Browse, m.Page())
}

func TestWrongPasswordStaysOnLogin(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, _ = press(t, m, "a")
	m, _ = press(t, m, testEmail)
	m, _ = press(t, m, "tab")
	m, _ = press(t, m, "errada")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	m = update(t, m, cmd())
	assert.Equal(t, navigation.Login, m.Page())
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "E-mail ou senha incorretos")
}

func TestAddFormSubmitsOnce(t *testing.T) {
	m, env := newTestModel(t, true)
	m = signIn(t, m)

	m, _ = press(t, m, "n")
	require.True(t, m.form.IsVisible())

	m, _ = press(t, m, "Filme Novo")
	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// A second submit while the first is in flight does nothing
	m, again := press(t, m, "ctrl+s")
	assert.Nil(t, again)

	m = update(t, m, cmd())
	assert.False(t, m.busy)
	assert.False(t, m.form.IsVisible())
	assert.Equal(t, 7, env.cache.Len())
	assert.Equal(t, 7, m.stats.Total)
	assert.Contains(t, m.StatusMsg, "Filme Novo")
}

func TestAddFormValidationKeepsFormOpen(t *testing.T) {
	m, env := newTestModel(t, true)
	m = signIn(t, m)

	m, _ = press(t, m, "n")
	m, cmd := press(t, m, "ctrl+s")
	assert.Nil(t, cmd)
	assert.True(t, m.form.IsVisible())
	assert.False(t, m.busy)
	assert.Equal(t, 6, env.cache.Len())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, env := newTestModel(t, true)
	m = signIn(t, m)

	target, ok := m.adminGrid.Selected()
	require.True(t, ok)

	m, _ = press(t, m, "x")
	require.True(t, m.confirm.IsVisible())
	assert.Equal(t, target.ID, m.confirm.Payload())
	assert.Contains(t, m.View(), "Excluir filme")

	m, _ = press(t, m, "n")
	assert.False(t, m.confirm.IsVisible())
	assert.Equal(t, 6, env.cache.Len())

	m, _ = press(t, m, "x")
	m, cmd := press(t, m, "s")
	require.NotNil(t, cmd)

	m = update(t, m, cmd())
	assert.Equal(t, 5, env.cache.Len())
	_, found := env.cache.Lookup(target.ID)
	assert.False(t, found)
	assert.Equal(t, 5, m.stats.Total)
}

func TestStaleDetailResultIgnored(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, cmd := press(t, m, "enter")
	require.Equal(t, navigation.Detail, m.Page())
	require.NotNil(t, cmd)
	require.NotNil(t, m.detail)

	m, _ = press(t, m, "esc")
	require.Equal(t, navigation.Browse, m.Page())

	m = update(t, m, cmd())
	assert.Nil(t, m.detail)
	assert.False(t, m.detailLoading)
}

func TestDetailShowsItem(t *testing.T) {
	m, _ := newTestModel(t, true)

	selected, ok := m.grid.Selected()
	require.True(t, ok)

	m, cmd := press(t, m, "enter")
	m = update(t, m, cmd())
	require.NotNil(t, m.detail)
	assert.Equal(t, selected.ID, m.detail.ID)
	assert.Contains(t, m.View(), selected.Title)
}

func TestSessionExpiryLeavesAdmin(t *testing.T) {
	m, env := newTestModel(t, true)
	m = signIn(t, m)

	env.backend.Expire()
	msg := WaitForSessionCmd(env.obs.Events())()
	m = update(t, m, msg)

	assert.Equal(t, navigation.Browse, m.Page())
	assert.Equal(t, "Sessão encerrada", m.StatusMsg)
}

func TestSignOutReturnsToBrowse(t *testing.T) {
	m, env := newTestModel(t, true)
	m = signIn(t, m)

	m, cmd := press(t, m, "L")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, navigation.Browse, m.Page())
	assert.False(t, env.session.SignedIn())
}

func TestBrowseSearch(t *testing.T) {
	m, _ := newTestModel(t, true)
	require.Equal(t, 6, m.grid.Len())

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "casa")
	assert.Equal(t, 1, m.grid.Len())
	assert.Contains(t, m.View(), "A Casa do Lago")

	m, _ = press(t, m, "esc")
	assert.Equal(t, 6, m.grid.Len())
	assert.Equal(t, "", m.view.Search)
}

func TestBrowseSearchNoMatch(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "zzzz")
	assert.Equal(t, 0, m.grid.Len())
	assert.Contains(t, m.View(), "Nenhum filme encontrado")
}

func TestSortModalChangesOrder(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, _ = press(t, m, "o")
	require.True(t, m.sortModal.IsVisible())

	// Last option in the list
	for range catalog.SortOptions() {
		m, _ = press(t, m, "j")
	}
	m, _ = press(t, m, "enter")
	assert.False(t, m.sortModal.IsVisible())
	assert.Equal(t, catalog.SortOptions()[len(catalog.SortOptions())-1], m.view.Sort)
}
