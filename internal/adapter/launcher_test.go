package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedStart struct {
	name string
	args []string
}

func TestLauncherUsesConfiguredPlayer(t *testing.T) {
	var got []recordedStart
	l := NewLauncher("mpv", []string{"--fs"}, NullLogger())
	l.start = func(name string, args ...string) error {
		got = append(got, recordedStart{name, args})
		return nil
	}

	require.NoError(t, l.Launch(" https://video.example.com/embed/abc "))
	require.Len(t, got, 1)
	assert.Equal(t, "mpv", got[0].name)
	assert.Equal(t, []string{"--fs", "https://video.example.com/embed/abc"}, got[0].args)
}

func TestLauncherConfiguredPlayerFailure(t *testing.T) {
	l := NewLauncher("mpv", nil, NullLogger())
	l.start = func(string, ...string) error { return errors.New("exec: not found") }

	err := l.Launch("https://video.example.com/embed/abc")
	assert.Error(t, err)
}

func TestLauncherRejectsUnplayableURLs(t *testing.T) {
	l := NewLauncher("mpv", nil, NullLogger())
	l.start = func(string, ...string) error {
		t.Fatal("player must not start")
		return nil
	}

	for _, raw := range []string{"", "   ", "not a url", "file:///etc/passwd", "https://"} {
		assert.ErrorIs(t, l.Launch(raw), ErrNoMedia, "url %q", raw)
	}
}
