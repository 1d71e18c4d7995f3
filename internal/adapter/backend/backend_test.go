package backend

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := &adapter.BackendConfig{Type: adapter.BackendMemory}
	b, err := New(context.Background(), cfg, nil, discardLogger())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, adapter.BackendMemory, b.Type)

	items, err := b.Items.ListItems(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)

	require.NoError(t, b.Auth.SignIn(context.Background(), DefaultDemoEmail, DefaultDemoPassword))
	user, err := b.Auth.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, DefaultDemoEmail, user.Email)
}

func TestNewMemoryBackendCustomAccount(t *testing.T) {
	cfg := &adapter.BackendConfig{Type: adapter.BackendMemory, DemoEmail: "me@x.io", DemoPassword: "pw"}
	b, err := New(context.Background(), cfg, nil, discardLogger())
	require.NoError(t, err)

	err = b.Auth.SignIn(context.Background(), DefaultDemoEmail, DefaultDemoPassword)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.NoError(t, b.Auth.SignIn(context.Background(), "me@x.io", "pw"))
}

func TestNewRESTBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/films", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","title":"Nova","genre":"Drama"}]`))
	}))
	defer srv.Close()

	cfg := &adapter.BackendConfig{Type: adapter.BackendREST, URL: srv.URL, APIKey: "key", Table: "films"}
	b, err := New(context.Background(), cfg, nil, discardLogger())
	require.NoError(t, err)
	defer b.Close()

	items, err := b.Items.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Nova", items[0].Title)

	user, err := b.Auth.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, Probe(context.Background(), cfg, discardLogger()))
}

func TestProbeReportsRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	cfg := &adapter.BackendConfig{Type: adapter.BackendREST, URL: srv.URL, APIKey: "bad"}
	err := Probe(context.Background(), cfg, discardLogger())
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &adapter.BackendConfig{Type: "carrier-pigeon"}, nil, discardLogger())
	assert.Error(t, err)
}
