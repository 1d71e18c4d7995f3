// Package memory provides an in-process auth provider and item store.
// It backs the demo mode and serves as the reference store in tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

// Backend implements domain.AuthProvider and domain.ItemRepository in memory.
type Backend struct {
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	items       []domain.Item
	lastCreated time.Time
	accounts    map[string]account // keyed by lowercased email
	current     *domain.AuthUser
	listeners   map[int]func(*domain.AuthUser)
	nextID      int
	offline     bool
}

type account struct {
	userID   string
	email    string
	password string
}

// Option configures a Backend
type Option func(*Backend)

// WithAccount registers an account that can sign in
func WithAccount(email, password string) Option {
	return func(b *Backend) {
		b.accounts[strings.ToLower(email)] = account{
			userID:   uuid.NewString(),
			email:    email,
			password: password,
		}
	}
}

// WithItems seeds the store. Items without an ID get one.
func WithItems(items ...domain.Item) Option {
	return func(b *Backend) {
		for _, it := range items {
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			b.items = append(b.items, it)
			if it.CreatedAt.After(b.lastCreated) {
				b.lastCreated = it.CreatedAt
			}
		}
	}
}

// WithClock overrides the time source for store-assigned timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New creates an empty in-memory backend
func New(logger *slog.Logger, opts ...Option) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{
		logger:    logger,
		now:       time.Now,
		accounts:  make(map[string]account),
		listeners: make(map[int]func(*domain.AuthUser)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetOffline makes every subsequent call fail as if the service were unreachable
func (b *Backend) SetOffline(offline bool) {
	b.mu.Lock()
	b.offline = offline
	b.mu.Unlock()
}

// === Data store ===

func (b *Backend) ListItems(ctx context.Context) ([]domain.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrStore); err != nil {
		return nil, err
	}
	out := make([]domain.Item, len(b.items))
	copy(out, b.items)
	slices.SortStableFunc(out, func(x, y domain.Item) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out, nil
}

func (b *Backend) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrStore); err != nil {
		return nil, err
	}
	i := b.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	it := b.items[i]
	return &it, nil
}

func (b *Backend) InsertItem(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrStore); err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	// Creation stamps are strictly increasing so "newest first" is total.
	created := b.now().UTC().Truncate(time.Microsecond)
	if !created.After(b.lastCreated) {
		created = b.lastCreated.Add(time.Microsecond)
	}
	b.lastCreated = created

	it := domain.Item{
		ID:            uuid.NewString(),
		Title:         draft.Title,
		Description:   draft.Description,
		EmbedURL:      draft.EmbedURL,
		CoverImageURL: draft.CoverImageURL,
		Genre:         draft.Genre,
		ReleaseYear:   draft.ReleaseYear,
		Duration:      draft.Duration,
		Rating:        draft.Rating,
		Views:         draft.Views,
		Likes:         draft.Likes,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	b.items = append(b.items, it)
	return &it, nil
}

func (b *Backend) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrStore); err != nil {
		return nil, err
	}
	i := b.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = b.now().UTC()
	}
	b.items[i] = patch.Apply(b.items[i])
	it := b.items[i]
	return &it, nil
}

func (b *Backend) RemoveItem(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrStore); err != nil {
		return err
	}
	i := b.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	b.items = slices.Delete(b.items, i, i+1)
	return nil
}

// === Auth provider ===

func (b *Backend) CurrentSession(ctx context.Context) (*domain.AuthUser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ctx, domain.ErrProvider); err != nil {
		return nil, err
	}
	if b.current == nil {
		return nil, nil
	}
	u := *b.current
	return &u, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) error {
	b.mu.Lock()
	if err := b.check(ctx, domain.ErrAuth); err != nil {
		b.mu.Unlock()
		return err
	}
	acct, ok := b.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.password != password {
		b.mu.Unlock()
		b.logger.Debug("rejected sign-in", "email", email)
		return fmt.Errorf("%w: invalid login credentials", domain.ErrAuth)
	}
	b.current = &domain.AuthUser{ID: acct.userID, Email: acct.email}
	b.mu.Unlock()

	b.emit(&domain.AuthUser{ID: acct.userID, Email: acct.email})
	return nil
}

func (b *Backend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	if err := b.check(ctx, domain.ErrAuth); err != nil {
		b.mu.Unlock()
		return err
	}
	b.current = nil
	b.mu.Unlock()

	b.emit(nil)
	return nil
}

// Expire drops the current session as a provider-side expiry would
func (b *Backend) Expire() {
	b.mu.Lock()
	had := b.current != nil
	b.current = nil
	b.mu.Unlock()
	if had {
		b.emit(nil)
	}
}

func (b *Backend) OnSessionChange(fn func(*domain.AuthUser)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Listeners returns the number of registered session listeners
func (b *Backend) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// emit delivers a session change to every listener, in registration order.
// Must be called without b.mu held.
func (b *Backend) emit(user *domain.AuthUser) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[int])
	fns := make([]func(*domain.AuthUser), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		if user == nil {
			fn(nil)
			continue
		}
		u := *user
		fn(&u)
	}
}

// check must be called with b.mu held
func (b *Backend) check(ctx context.Context, class error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", class, err)
	}
	if b.offline {
		return fmt.Errorf("%w: service offline", class)
	}
	return nil
}

// indexOf must be called with b.mu held
func (b *Backend) indexOf(id string) int {
	return slices.IndexFunc(b.items, func(it domain.Item) bool { return it.ID == id })
}
