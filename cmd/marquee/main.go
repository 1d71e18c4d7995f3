package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/backend"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/session"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

func main() {
	var showVersion, reset bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&reset, "reset", false, "forget the backend connection and saved sessions")
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if reset {
		if err := resetConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Connection settings cleared. Run marquee again to set it up.")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resetConfig() error {
	if _, err := adapter.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return errors.Join(adapter.ClearBackendConfig(), adapter.ClearCache())
}

func run() error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version, "backend", cfg.Backend.Type)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	tokens, err := store.NewSessionStore(adapter.GetCachePath(), cfg.Backend.URL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer tokens.Close()

	ctx := context.Background()
	be, err := backend.New(ctx, &cfg.Backend, tokens, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	defer be.Close()

	sessions := session.NewSync(be.Auth, logger)
	defer sessions.Close()

	cache := catalog.NewCache(be.Items, logger)
	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	observer := tui.NewSessionObserver()
	stop := sessions.OnChange(observer.OnChange)
	defer stop()

	model := tui.NewModel(sessions, cache, launcher, observer.Events(), tui.Options{
		Layout: catalog.ParseLayout(cfg.UI.DefaultLayout),
		Sort:   catalog.ParseSortKey(cfg.UI.DefaultSort),
		Logger: logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the connection parameters, checks them against the
// backend and saves them
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()

	kind, err := promptBackendType(reader)
	if err != nil {
		return err
	}
	cfg.Backend.Type = kind

	if kind == adapter.BackendMemory {
		if cfg.Backend.DemoEmail == "" {
			cfg.Backend.DemoEmail = backend.DefaultDemoEmail
		}
		if cfg.Backend.DemoPassword == "" {
			cfg.Backend.DemoPassword = backend.DefaultDemoPassword
		}
		fmt.Printf("Demo mode: sign in with %s / %s\n", cfg.Backend.DemoEmail, cfg.Backend.DemoPassword)
		return saveAndExit(cfg)
	}

	// Loop until the backend answers
	for {
		cfg.Backend.URL, err = promptLine(reader, "Enter your project URL (e.g., https://xyz.example.co): ")
		if err != nil {
			return err
		}
		if cfg.Backend.URL == "" {
			fmt.Println("URL cannot be empty. Please try again.")
			continue
		}

		cfg.Backend.APIKey, err = promptSecret(reader, "Enter the public API key: ")
		if err != nil {
			return err
		}
		if cfg.Backend.APIKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		if kind == adapter.BackendPostgres {
			cfg.Backend.DSN, err = promptSecret(reader, "Enter the Postgres connection string: ")
			if err != nil {
				return err
			}
			if cfg.Backend.DSN == "" {
				fmt.Println("Connection string cannot be empty. Please try again.")
				continue
			}
		}

		fmt.Println()
		if err := probeWithSpinner(&cfg.Backend, logger); err != nil {
			fmt.Printf("\n✗ Could not reach the backend: %v\n", err)
			fmt.Println("Please check the settings and try again.")
			fmt.Println()
			continue
		}
		break
	}

	return saveAndExit(cfg)
}

func saveAndExit(cfg *adapter.Config) error {
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run marquee again to start the application.")
	return nil
}

func promptBackendType(reader *bufio.Reader) (adapter.BackendType, error) {
	for {
		input, err := promptLine(reader, "Backend type (rest, postgres, memory) [rest]: ")
		if err != nil {
			return "", err
		}
		switch kind := adapter.BackendType(strings.ToLower(input)); kind {
		case "":
			return adapter.BackendREST, nil
		case adapter.BackendREST, adapter.BackendPostgres, adapter.BackendMemory:
			return kind, nil
		}
		fmt.Println("Unknown backend type. Please try again.")
	}
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptSecret reads a line without echo when stdin is a terminal
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(reader, prompt)
	}

	fmt.Print(prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// probeWithSpinner checks the connection with a visual spinner
func probeWithSpinner(cfg *adapter.BackendConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- backend.Probe(ctx, cfg, logger)
	}()

	frame := 0
	fmt.Printf("\r%s Connecting to backend...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Connected: %s\n", cfg.URL)
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Connecting to backend...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("connection timed out")
		}
	}
}
