package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClientListItems(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/movies", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "1", "title": "Nova", "genre": "Drama", "rating": 8.5, "release_year": 2021, "created_at": created, "updated_at": created, "views": 1200},
			{"id": "2", "title": "Dusk", "genre": "Ação", "rating": 6, "description": nil, "created_at": created, "updated_at": created},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "anon-key", nil, Options{}, discardLogger())
	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Nova", items[0].Title)
	assert.Equal(t, 2021, items[0].ReleaseYear)
	assert.Equal(t, int64(1200), items[0].ViewCount())
	assert.True(t, created.Equal(items[0].CreatedAt))
	assert.Nil(t, items[1].Views)
	assert.Equal(t, int64(0), items[1].ViewCount())
}

func TestClientUsesAccessTokenWhenSignedIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", staticToken("user-jwt"), Options{Table: "films"}, discardLogger())
	_, err := c.ListItems(context.Background())
	require.NoError(t, err)
}

func TestClientGetItemNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
	_, err := c.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientInsertItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft domain.ItemDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Nova", draft.Title)

		writeJSON(w, http.StatusCreated, []map[string]any{
			{"id": "new-id", "title": draft.Title, "created_at": time.Now().UTC()},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
	item, err := c.InsertItem(context.Background(), domain.ItemDraft{Title: "Nova"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", item.ID)
}

func TestClientUpdateItemSendsOnlyChangedFields(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 123000, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.42", r.URL.Query().Get("id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 2)
		assert.Equal(t, 9.0, body["rating"])
		assert.Equal(t, stamp.Format(time.RFC3339Nano), body["updated_at"])

		writeJSON(w, http.StatusOK, []map[string]any{{"id": "42", "rating": 9.0, "updated_at": stamp}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
	rating := 9.0
	item, err := c.UpdateItem(context.Background(), "42", domain.ItemPatch{Rating: &rating, UpdatedAt: stamp})
	require.NoError(t, err)
	assert.Equal(t, 9.0, item.Rating)
}

func TestClientRemoveItem(t *testing.T) {
	var deleted atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if deleted.Swap(true) {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "42"}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
	require.NoError(t, c.RemoveItem(context.Background(), "42"))
	assert.ErrorIs(t, c.RemoveItem(context.Background(), "42"), domain.ErrNotFound)
}

func TestClientErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   map[string]any
		want   []error
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]any{"message": "JWT expired", "code": "PGRST301"}, []error{domain.ErrStore, domain.ErrAuth}},
		{"rejected row", http.StatusBadRequest, map[string]any{"message": "null value in column \"title\"", "code": "23502"}, []error{domain.ErrValidation}},
		{"conflict", http.StatusConflict, map[string]any{"message": "duplicate key", "code": "23505"}, []error{domain.ErrValidation}},
		{"malformed id", http.StatusBadRequest, map[string]any{"message": "invalid input syntax for type uuid", "code": "22P02"}, []error{domain.ErrNotFound}},
		{"server error", http.StatusInternalServerError, map[string]any{"message": "boom"}, []error{domain.ErrStore}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}))
			defer server.Close()

			c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
			_, err := c.GetItem(context.Background(), "x")
			require.Error(t, err)
			for _, want := range tc.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestClientUnreachableIsStoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "anon-key", nil, Options{Timeout: time.Second}, discardLogger())
	_, err := c.ListItems(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, errUnreachable)
}

func TestClientGarbageBodyIsStoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "anon-key", nil, Options{}, discardLogger())
	_, err := c.ListItems(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestClientPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid API key"})
			return
		}
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []any{})
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL, "good", nil, Options{}, discardLogger()).Ping(context.Background()))
	assert.ErrorIs(t, NewClient(server.URL, "bad", nil, Options{}, discardLogger()).Ping(context.Background()), domain.ErrAuth)
}
