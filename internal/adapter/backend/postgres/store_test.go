package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to MARQUEE_TEST_DATABASE_URL and creates a
// throwaway table. Skips when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("MARQUEE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MARQUEE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	table := "marquee_test_" + uuid.NewString()[:8]
	s := NewStore(pool, table, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.EnsureSchema(ctx))
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+s.table)
	})
	return s
}

func TestAssignmentsOnlyChangedColumns(t *testing.T) {
	title := "Nova"
	rating := 8.5
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	set, args := assignments(domain.ItemPatch{Title: &title, Rating: &rating, UpdatedAt: stamp})
	assert.Equal(t, []string{"title = $1", "rating = $2", "updated_at = $3"}, set)
	assert.Equal(t, []any{"Nova", 8.5, stamp}, args)

	set, args = assignments(domain.ItemPatch{})
	assert.Equal(t, []string{"updated_at = now()"}, set)
	assert.Empty(t, args)
}

func TestNewStoreSanitizesTable(t *testing.T) {
	s := NewStore(nil, "public.movies", nil)
	assert.Equal(t, `"public"."movies"`, s.table)

	s = NewStore(nil, `bad"; drop table x;--`, nil)
	assert.Equal(t, `"bad""; drop table x;--"`, s.table)
}

func TestStoreMalformedIDIsNotFound(t *testing.T) {
	s := NewStore(nil, "", nil)
	ctx := context.Background()

	_, err := s.GetItem(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.UpdateItem(ctx, "not-a-uuid", domain.ItemPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.RemoveItem(ctx, "not-a-uuid"), domain.ErrNotFound)
}

func TestStoreLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.InsertItem(ctx, domain.ItemDraft{Title: "First", Genre: "Drama", Rating: 7.5, ReleaseYear: 2020})
	require.NoError(t, err)
	second, err := s.InsertItem(ctx, domain.ItemDraft{Title: "Second", Genre: "Ação", Rating: 6})
	require.NoError(t, err)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Nil(t, items[0].Views)

	stamp := time.Now().UTC().Truncate(time.Microsecond).Add(time.Second)
	rating := 9.0
	updated, err := s.UpdateItem(ctx, first.ID, domain.ItemPatch{Rating: &rating, UpdatedAt: stamp})
	require.NoError(t, err)
	assert.Equal(t, 9.0, updated.Rating)
	assert.Equal(t, "First", updated.Title)
	assert.True(t, stamp.Equal(updated.UpdatedAt))

	require.NoError(t, s.RemoveItem(ctx, first.ID))
	_, err = s.GetItem(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.RemoveItem(ctx, first.ID), domain.ErrNotFound)
}

func TestStoreRejectsInvalidRows(t *testing.T) {
	s := openTestStore(t)

	_, err := s.InsertItem(context.Background(), domain.ItemDraft{Title: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.InsertItem(context.Background(), domain.ItemDraft{Title: "Too good", Rating: 11})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
