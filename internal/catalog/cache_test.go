package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/adapter/backend/memory"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingRepo fails every call with err
type failingRepo struct{ err error }

func (f failingRepo) ListItems(context.Context) ([]domain.Item, error) { return nil, f.err }
func (f failingRepo) GetItem(context.Context, string) (*domain.Item, error) {
	return nil, f.err
}
func (f failingRepo) InsertItem(context.Context, domain.ItemDraft) (*domain.Item, error) {
	return nil, f.err
}
func (f failingRepo) UpdateItem(context.Context, string, domain.ItemPatch) (*domain.Item, error) {
	return nil, f.err
}
func (f failingRepo) RemoveItem(context.Context, string) error { return f.err }

func seededCache(t *testing.T) (*Cache, *memory.Backend) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	backend := memory.New(discardLogger(), memory.WithItems(
		domain.Item{ID: "a", Title: "Alpha", Genre: "Drama", Rating: 7, CreatedAt: base, UpdatedAt: base},
		domain.Item{ID: "b", Title: "Beta", Genre: "Ação", Rating: 8, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
	))
	c := NewCache(backend, discardLogger())
	_, err := c.List(context.Background())
	require.NoError(t, err)
	return c, backend
}

func TestCacheListOrdersNewestFirst(t *testing.T) {
	c, _ := seededCache(t)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.True(t, c.Loaded())
	assert.NoError(t, c.Err())
}

func TestCacheCreatePrepends(t *testing.T) {
	c, _ := seededCache(t)
	ctx := context.Background()

	created, err := c.Create(ctx, domain.ItemDraft{Title: "Gamma", Genre: "Drama", Rating: 6})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, created.ID, items[0].ID)

	view := Derive(items, DefaultViewState())
	assert.Equal(t, created.ID, view.Items[0].ID)
}

func TestCacheUpdateMergesAndAdvancesTimestamp(t *testing.T) {
	c, _ := seededCache(t)
	ctx := context.Background()

	before, ok := c.Lookup("a")
	require.True(t, ok)

	rating := 9.1
	updated, err := c.Update(ctx, "a", domain.ItemPatch{Rating: &rating})
	require.NoError(t, err)

	assert.Equal(t, 9.1, updated.Rating)
	assert.Equal(t, before.Title, updated.Title)
	assert.Equal(t, before.Genre, updated.Genre)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))

	cached, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, *updated, cached)

	// Position is kept
	assert.Equal(t, "a", c.Items()[1].ID)
}

func TestCacheUpdateTimestampStrictlyIncreasesWithFrozenClock(t *testing.T) {
	frozen := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := memory.New(discardLogger(), memory.WithItems(
		domain.Item{ID: "x", Title: "X", CreatedAt: frozen, UpdatedAt: frozen},
	))
	c := NewCache(backend, discardLogger(), WithClock(func() time.Time { return frozen }))
	ctx := context.Background()
	_, err := c.List(ctx)
	require.NoError(t, err)

	title := "X2"
	first, err := c.Update(ctx, "x", domain.ItemPatch{Title: &title})
	require.NoError(t, err)
	second, err := c.Update(ctx, "x", domain.ItemPatch{Title: &title})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(frozen))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestCacheDeleteRemovesFromMirrorAndStore(t *testing.T) {
	c, _ := seededCache(t)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, "a"))

	_, ok := c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheDeleteMissingIsNotFound(t *testing.T) {
	c, _ := seededCache(t)

	err := c.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, c.Len())
}

func TestCacheFailedListKeepsPreviousItems(t *testing.T) {
	c, backend := seededCache(t)
	backend.SetOffline(true)

	items, err := c.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Nil(t, items)

	assert.Equal(t, 2, c.Len())
	assert.ErrorIs(t, c.Err(), domain.ErrStore)

	backend.SetOffline(false)
	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.NoError(t, c.Err())
}

func TestCacheFailedMutationsLeaveMirrorUnchanged(t *testing.T) {
	c, backend := seededCache(t)
	ctx := context.Background()
	before := c.Items()
	backend.SetOffline(true)

	_, err := c.Create(ctx, domain.ItemDraft{Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrStore)

	title := "Changed"
	_, err = c.Update(ctx, "a", domain.ItemPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrStore)

	err = c.Delete(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrStore)

	assert.Equal(t, before, c.Items())
}

func TestCacheValidationErrorPassesThrough(t *testing.T) {
	c, _ := seededCache(t)

	_, err := c.Create(context.Background(), domain.ItemDraft{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, 2, c.Len())
}

func TestCacheClassifiesUnknownErrorsAsStore(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewCache(failingRepo{err: boom}, discardLogger())

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Loaded())

	_, err = c.Get(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestCacheItemsReturnsCopy(t *testing.T) {
	c, _ := seededCache(t)

	items := c.Items()
	items[0].Title = "mutated"

	cached, ok := c.Lookup(items[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", cached.Title)
}
