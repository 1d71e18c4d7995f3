// Package session mirrors the auth provider's notion of the current user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

// Sync keeps the current session in step with the auth provider.
//
// The session is discovered once at Start and then replaced wholesale by
// every change event the provider emits. Sign-in and sign-out never touch
// the session directly; the event that follows them does.
type Sync struct {
	provider domain.AuthProvider
	logger   *slog.Logger

	mu          sync.RWMutex
	session     *domain.Session
	loading     bool
	started     bool
	closed      bool
	events      uint64 // change events applied so far
	unsubscribe func()
	closeOnce   sync.Once

	listeners    map[int]func(Snapshot)
	nextListener int
}

// Snapshot is the state handed to OnChange listeners
type Snapshot struct {
	Session *domain.Session // nil when signed out
	Loading bool
}

// NewSync creates a Sync in the loading state with no session
func NewSync(provider domain.AuthProvider, logger *slog.Logger) *Sync {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{
		provider:  provider,
		logger:    logger,
		loading:   true,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Start subscribes to session changes and then queries the provider once.
// A change event that lands while the query is in flight is newer than the
// query result and wins. Loading ends either way; a query failure leaves
// the user signed out and is returned for logging.
func (s *Sync) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	unsubscribe := s.provider.OnSessionChange(s.handleChange)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	seen := s.events
	s.mu.Unlock()

	user, err := s.provider.CurrentSession(ctx)
	if err != nil && !errors.Is(err, domain.ErrProvider) {
		err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}

	s.mu.Lock()
	if s.events == seen && !s.closed {
		if err != nil {
			s.session = nil
		} else {
			s.session = toSession(user)
		}
	}
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to query current session", "error", err)
	} else if snap.Session != nil {
		s.logger.Info("discovered existing session", "user_id", snap.Session.UserID)
	}
	s.notify(snap)
	return err
}

// Close releases the provider subscription. Safe to call more than once.
func (s *Sync) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		unsubscribe := s.unsubscribe
		s.unsubscribe = nil
		s.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		s.logger.Debug("session subscription released")
	})
}

// SignIn asks the provider to authenticate. The session itself changes
// when the provider reports it.
func (s *Sync) SignIn(ctx context.Context, email, password string) error {
	if err := s.provider.SignIn(ctx, email, password); err != nil {
		if !errors.Is(err, domain.ErrAuth) {
			err = fmt.Errorf("%w: %w", domain.ErrAuth, err)
		}
		s.logger.Error("failed to sign in", "error", err, "email", email)
		return err
	}
	s.logger.Info("signed in", "email", email)
	return nil
}

// SignOut asks the provider to end the session
func (s *Sync) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		if !errors.Is(err, domain.ErrAuth) {
			err = fmt.Errorf("%w: %w", domain.ErrAuth, err)
		}
		s.logger.Error("failed to sign out", "error", err)
		return err
	}
	s.logger.Info("signed out")
	return nil
}

// Current returns the session, if any
func (s *Sync) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

// SignedIn reports whether a session is present
func (s *Sync) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Loading reports whether the initial query has not resolved yet
func (s *Sync) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// OnChange registers fn to be called after every session change and after
// the initial query resolves. The returned function removes it.
func (s *Sync) OnChange(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Sync) handleChange(user *domain.AuthUser) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.events++
	s.session = toSession(user)
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if snap.Session != nil {
		s.logger.Debug("session changed", "user_id", snap.Session.UserID)
	} else {
		s.logger.Debug("session ended")
	}
	s.notify(snap)
}

func (s *Sync) snapshotLocked() Snapshot {
	snap := Snapshot{Loading: s.loading}
	if s.session != nil {
		cp := *s.session
		snap.Session = &cp
	}
	return snap
}

func (s *Sync) notify(snap Snapshot) {
	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func toSession(user *domain.AuthUser) *domain.Session {
	if user == nil {
		return nil
	}
	return &domain.Session{UserID: user.ID, Email: user.Email, Role: domain.RoleAdmin}
}
