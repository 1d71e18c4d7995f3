package store

import (
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleToken() domain.AuthToken {
	return domain.AuthToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		UserID:       "u1",
		Email:        "admin@example.com",
	}
}

func TestSessionStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir, "https://api.example.com/")
	require.NoError(t, err)
	_, ok := s.LoadToken()
	assert.False(t, ok)

	require.NoError(t, s.SaveToken(sampleToken()))
	require.NoError(t, s.Close())

	s, err = NewSessionStore(dir, "https://API.example.com")
	require.NoError(t, err)
	defer s.Close()

	tok, ok := s.LoadToken()
	require.True(t, ok)
	assert.Equal(t, sampleToken(), *tok)
}

func TestSessionStoreSeparatesBackends(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSessionStore(dir, "https://a.example.com")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SaveToken(sampleToken()))

	b, err := NewSessionStore(dir, "https://b.example.com")
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.LoadToken()
	assert.False(t, ok)
}

func TestSessionStoreClearToken(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSessionStore(dir, "")
	require.NoError(t, err)

	require.NoError(t, s.SaveToken(sampleToken()))
	require.NoError(t, s.ClearToken())
	_, ok := s.LoadToken()
	assert.False(t, ok)
	require.NoError(t, s.Close())

	s, err = NewSessionStore(dir, "")
	require.NoError(t, err)
	defer s.Close()
	_, ok = s.LoadToken()
	assert.False(t, ok)
}

func TestSessionStoreMemoryOnly(t *testing.T) {
	s, err := NewSessionStore("", "https://ignored")
	require.NoError(t, err)

	require.NoError(t, s.SaveToken(sampleToken()))
	tok, ok := s.LoadToken()
	require.True(t, ok)
	assert.Equal(t, "access", tok.AccessToken)

	require.NoError(t, s.ClearToken())
	_, ok = s.LoadToken()
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}
