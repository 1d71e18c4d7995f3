package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// Cache is the local mirror of the data store's items.
//
// The mirror only changes after the store confirms an operation; a failed
// call leaves it exactly as it was. Items are kept newest-created first as
// loaded by List, with created items prepended.
type Cache struct {
	repo   domain.ItemRepository
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	items  []domain.Item
	loaded bool
	err    error // last List failure, cleared by a successful List
}

// Option configures a Cache
type Option func(*Cache)

// WithClock overrides the time source used for updated-at stamps
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates an empty cache over repo
func NewCache(repo domain.ItemRepository, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every item and replaces the mirror. On failure the previous
// items stay in place and Err reports the failure.
func (c *Cache) List(ctx context.Context) ([]domain.Item, error) {
	items, err := c.repo.ListItems(ctx)
	if err != nil {
		err = classify(err)
		c.logger.Error("failed to list items", "error", err)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.items = append([]domain.Item(nil), items...)
	c.loaded = true
	c.err = nil
	c.mu.Unlock()

	c.logger.Debug("listed items", "count", len(items))
	return c.Items(), nil
}

// Get fetches a single item from the store. The mirror is not touched.
func (c *Cache) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := c.repo.GetItem(ctx, id)
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Debug("item not found", "id", id)
		} else {
			c.logger.Error("failed to get item", "error", err, "id", id)
		}
		return nil, err
	}
	return item, nil
}

// Create stores a draft and prepends the stored item to the mirror.
func (c *Cache) Create(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	item, err := c.repo.InsertItem(ctx, draft)
	if err != nil {
		err = classify(err)
		c.logger.Error("failed to create item", "error", err, "title", draft.Title)
		return nil, err
	}

	c.mu.Lock()
	c.items = append([]domain.Item{*item}, c.items...)
	c.mu.Unlock()

	c.logger.Info("created item", "id", item.ID, "title", item.Title)
	return item, nil
}

// Update sends a partial update stamped with the current time and replaces
// the cached entry in place once the store confirms it.
func (c *Cache) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	patch.UpdatedAt = c.nextUpdatedAt(id)

	item, err := c.repo.UpdateItem(ctx, id, patch)
	if err != nil {
		err = classify(err)
		c.logger.Error("failed to update item", "error", err, "id", id)
		return nil, err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = *item
			break
		}
	}
	c.mu.Unlock()

	c.logger.Info("updated item", "id", id)
	return item, nil
}

// Delete removes an item from the store, then from the mirror.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.repo.RemoveItem(ctx, id); err != nil {
		err = classify(err)
		c.logger.Error("failed to delete item", "error", err, "id", id)
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.logger.Info("deleted item", "id", id)
	return nil
}

// Items returns a copy of the mirror in cache order
func (c *Cache) Items() []domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of cached items
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Lookup returns the cached item with the given ID
func (c *Cache) Lookup(id string) (domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.Item{}, false
}

// Loaded reports whether a List has succeeded at least once
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Err returns the failure of the most recent List, nil after a success
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// nextUpdatedAt returns now at microsecond precision (what the store keeps),
// bumped past the cached copy's stamp so updates always move it forward.
func (c *Cache) nextUpdatedAt(id string) time.Time {
	ts := c.now().UTC().Truncate(time.Microsecond)
	if prev, ok := c.Lookup(id); ok && !ts.After(prev.UpdatedAt) {
		ts = prev.UpdatedAt.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return ts
}

// classify makes sure every failure leaving the cache carries a domain
// error class; unclassified errors count as store failures.
func classify(err error) error {
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrStore) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
