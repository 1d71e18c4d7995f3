package domain

import "context"

// AuthProvider issues and revokes sessions and reports every session change.
type AuthProvider interface {
	// CurrentSession returns the signed-in user, or nil when there is none.
	// Fails with ErrProvider when the provider cannot be queried.
	CurrentSession(ctx context.Context) (*AuthUser, error)

	// SignIn authenticates with email/password. Fails with ErrAuth.
	SignIn(ctx context.Context, email, password string) error

	// SignOut revokes the current session. Fails with ErrAuth.
	SignOut(ctx context.Context) error

	// OnSessionChange registers a standing listener receiving the new user
	// (nil on sign-out or expiry) on every change. The returned function
	// removes the listener; calling it more than once is a no-op.
	OnSessionChange(fn func(*AuthUser)) (unsubscribe func())
}

// ItemRepository is the durable data store for catalog items.
type ItemRepository interface {
	// ListItems returns every item ordered by creation time, newest first
	ListItems(ctx context.Context) ([]Item, error)

	// GetItem returns one item. Fails with ErrNotFound or ErrStore.
	GetItem(ctx context.Context, id string) (*Item, error)

	// InsertItem stores a draft and returns it with ID and timestamps assigned
	InsertItem(ctx context.Context, draft ItemDraft) (*Item, error)

	// UpdateItem applies a partial update and returns the stored result
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*Item, error)

	// RemoveItem deletes an item. Fails with ErrNotFound or ErrStore.
	RemoveItem(ctx context.Context, id string) error
}

// TokenStore persists provider credentials between runs.
type TokenStore interface {
	LoadToken() (*AuthToken, bool)
	SaveToken(tok AuthToken) error
	ClearToken() error
}
