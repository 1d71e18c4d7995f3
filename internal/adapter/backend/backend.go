// Package backend builds the auth provider and data store pair selected by
// the configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/backend/memory"
	"github.com/mmcdole/marquee/internal/adapter/backend/postgres"
	"github.com/mmcdole/marquee/internal/adapter/backend/rest"
	"github.com/mmcdole/marquee/internal/domain"
)

// Demo account used by the memory backend when none is configured
const (
	DefaultDemoEmail    = "admin@marquee.local"
	DefaultDemoPassword = "marquee"
)

// Backend is a connected auth provider and data store
type Backend struct {
	Type  adapter.BackendType
	Auth  domain.AuthProvider
	Items domain.ItemRepository

	closers []io.Closer
}

// Close releases every resource the backend opened, in reverse order
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// New connects the backend named by cfg. tokens persists the auth session
// for the rest and postgres backends and may be nil.
func New(ctx context.Context, cfg *adapter.BackendConfig, tokens domain.TokenStore, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case adapter.BackendMemory:
		return newMemory(cfg, logger), nil

	case adapter.BackendREST, "":
		auth := rest.NewAuth(cfg.URL, cfg.APIKey, tokens, restOptions(cfg), logger.With("component", "auth"))
		client := rest.NewClient(cfg.URL, cfg.APIKey, auth, restOptions(cfg), logger.With("component", "store"))
		return &Backend{
			Type:    adapter.BackendREST,
			Auth:    auth,
			Items:   client,
			closers: []io.Closer{auth},
		}, nil

	case adapter.BackendPostgres:
		store, err := postgres.Open(ctx, cfg.DSN, cfg.Table, logger.With("component", "store"))
		if err != nil {
			return nil, err
		}
		auth := rest.NewAuth(cfg.URL, cfg.APIKey, tokens, restOptions(cfg), logger.With("component", "auth"))
		return &Backend{
			Type:    adapter.BackendPostgres,
			Auth:    auth,
			Items:   store,
			closers: []io.Closer{store, auth},
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}

func newMemory(cfg *adapter.BackendConfig, logger *slog.Logger) *Backend {
	email, password := cfg.DemoEmail, cfg.DemoPassword
	if email == "" {
		email = DefaultDemoEmail
	}
	if password == "" {
		password = DefaultDemoPassword
	}
	logger.Info("using in-memory demo backend", "email", email)

	mem := memory.New(logger.With("component", "memory"),
		memory.WithAccount(email, password),
		memory.WithItems(memory.DemoItems(time.Now())...),
	)
	return &Backend{Type: adapter.BackendMemory, Auth: mem, Items: mem}
}

// Probe checks that the data store answers with the given connection
// parameters. It is used by the setup flow before saving them.
func Probe(ctx context.Context, cfg *adapter.BackendConfig, logger *slog.Logger) error {
	switch cfg.Type {
	case adapter.BackendMemory:
		return nil
	case adapter.BackendPostgres:
		store, err := postgres.Open(ctx, cfg.DSN, cfg.Table, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.ListItems(ctx); err != nil {
			return err
		}
		return nil
	default:
		return rest.NewClient(cfg.URL, cfg.APIKey, nil, restOptions(cfg), logger).Ping(ctx)
	}
}

func restOptions(cfg *adapter.BackendConfig) rest.Options {
	return rest.Options{
		Table:     cfg.Table,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.Timeout,
	}
}
