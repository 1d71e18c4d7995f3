package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/session"
)

// Timeouts for backend round trips started from the UI
const (
	sessionTimeout = 15 * time.Second
	loadTimeout    = 30 * time.Second
	writeTimeout   = 20 * time.Second
)

// Command factories for async operations

// StartSessionCmd runs the initial session query
func StartSessionCmd(s *session.Sync) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		return SessionStartedMsg{Err: s.Start(ctx)}
	}
}

// WaitForSessionCmd waits for the next session snapshot
func WaitForSessionCmd(events <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-events
		if !ok {
			return nil
		}
		return SessionChangedMsg{Snapshot: snap}
	}
}

// SignInCmd asks the provider for a session
func SignInCmd(s *session.Sync, seq uint64, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		return SignInResultMsg{Seq: seq, Err: s.SignIn(ctx, email, password)}
	}
}

// SignOutCmd ends the session
func SignOutCmd(s *session.Sync) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		return SignOutResultMsg{Err: s.SignOut(ctx)}
	}
}

// LoadCatalogCmd refreshes the cache from the data store
func LoadCatalogCmd(c *catalog.Cache, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		items, err := c.List(ctx)
		return CatalogLoadedMsg{Seq: seq, Items: items, Err: err}
	}
}

// LoadItemCmd fetches one item for the detail page
func LoadItemCmd(c *catalog.Cache, seq uint64, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		item, err := c.Get(ctx, id)
		return ItemLoadedMsg{Seq: seq, ID: id, Item: item, Err: err}
	}
}

// CreateItemCmd stores a new item
func CreateItemCmd(c *catalog.Cache, seq uint64, draft domain.ItemDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		item, err := c.Create(ctx, draft)
		return ItemSavedMsg{Seq: seq, Item: item, Created: true, Err: err}
	}
}

// UpdateItemCmd applies a patch to an existing item
func UpdateItemCmd(c *catalog.Cache, seq uint64, id string, patch domain.ItemPatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		item, err := c.Update(ctx, id, patch)
		return ItemSavedMsg{Seq: seq, Item: item, Err: err}
	}
}

// DeleteItemCmd removes an item
func DeleteItemCmd(c *catalog.Cache, seq uint64, id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		return ItemDeletedMsg{Seq: seq, ID: id, Title: title, Err: c.Delete(ctx, id)}
	}
}

// PlayItemCmd opens the item in the external player
func PlayItemCmd(l Launcher, item domain.Item) tea.Cmd {
	return func() tea.Msg {
		if err := l.Launch(item.EmbedURL); err != nil {
			return ErrMsg{Err: err, Context: "reprodução"}
		}
		return PlaybackStartedMsg{Title: item.Title}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(id int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
