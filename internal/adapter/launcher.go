package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoMedia is returned when an item has nothing playable
var ErrNoMedia = errors.New("item has no playable url")

// Launcher opens an item's playable URL in an external player
type Launcher struct {
	command string   // configured player command, empty for system default
	args    []string // additional arguments for the player
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
}

// candidatePlayers defines the preferred player order for each platform.
// Embed URLs are usually web pages, so only players that hand those off to
// a stream extractor are tried.
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv", "vlc"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"mpv", "vlc"},
}

// NewLauncher creates a Launcher. An empty command auto-detects a player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start:   startCommand,
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Launch opens a media URL in the configured player, a detected player or
// the system default, in that order
func (l *Launcher) Launch(rawURL string) error {
	target, err := playableURL(rawURL)
	if err != nil {
		return err
	}

	// Tier 1: User configured a specific player
	if l.command != "" {
		args := append(append([]string{}, l.args...), target)
		l.logger.Info("launching player", "command", l.command, "args", args)
		if err := l.start(l.command, args...); err != nil {
			return fmt.Errorf("failed to launch %s: %w", l.command, err)
		}
		return nil
	}

	// Tier 2: Try candidate chain
	if name, err := l.detectAndLaunch(target); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default", "os", runtime.GOOS)
	return l.launchDefault(target)
}

// detectAndLaunch tries candidate players in order
func (l *Launcher) detectAndLaunch(target string) (string, error) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err != nil {
			l.logger.Debug("player not available", "player", name, "error", err)
			continue
		}
		if err := l.start(name, target); err != nil {
			l.logger.Debug("player failed to start", "player", name, "error", err)
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("no candidate players found")
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return l.start("open", target)
	case "windows":
		return l.start("cmd", "/c", "start", "", target)
	default:
		return l.start("xdg-open", target)
	}
}

// playableURL checks that raw is an absolute http(s) URL
func playableURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoMedia
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoMedia, raw)
	}
	return u.String(), nil
}
