package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mmcdole/marquee/internal/domain"
)

const (
	// refreshMargin is how long before expiry the access token is renewed
	refreshMargin = 30 * time.Second
	// timerTimeout bounds a background refresh
	timerTimeout = 15 * time.Second
)

// accessClaims are the access token claims this client reads. The token is
// never verified locally; the backend does that on every call.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth implements domain.AuthProvider against the auth API.
//
// The session is the access/refresh token pair, persisted through a
// domain.TokenStore so a restart discovers it. A timer renews the access
// token shortly before it expires; when renewal is refused the session ends
// and listeners are told.
type Auth struct {
	t      *transport
	store  domain.TokenStore
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	token     *domain.AuthToken
	timer     *time.Timer
	closed    bool
	listeners map[int]func(*domain.AuthUser)
	nextID    int
}

// NewAuth creates an auth client and loads any persisted token. store may
// be nil for a session that only lives as long as the process.
func NewAuth(baseURL, apiKey string, store domain.TokenStore, opts Options, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Auth{
		t:         newTransport(baseURL, apiKey, opts, logger),
		store:     store,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(*domain.AuthUser)),
	}
	if store != nil {
		if tok, ok := store.LoadToken(); ok {
			a.token = tok
			logger.Debug("loaded persisted session", "user_id", tok.UserID)
		}
	}
	return a
}

// CurrentSession validates the stored token against the backend. An
// expired token is renewed first. A token the backend refuses is dropped
// and reported as no session.
func (a *Auth) CurrentSession(ctx context.Context) (*domain.AuthUser, error) {
	tok := a.currentToken()
	if tok == nil {
		return nil, nil
	}

	if tok.Expired(a.now()) {
		renewed, err := a.refresh(ctx, tok.RefreshToken)
		if err != nil {
			if errors.Is(err, domain.ErrAuth) {
				a.dropToken()
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		tok = renewed
	}

	body, err := a.t.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user", bearer: tok.AccessToken})
	if err != nil {
		if serr, ok := asStatus(err); ok && (serr.Status == http.StatusUnauthorized || serr.Status == http.StatusForbidden) {
			a.logger.Info("persisted session rejected", "status", serr.Status)
			a.dropToken()
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}

	var user userDTO
	if err := decodeJSON(body, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}

	a.schedule()
	return &domain.AuthUser{ID: user.ID, Email: user.Email}, nil
}

// SignIn exchanges email/password for a session and reports the new user
func (a *Auth) SignIn(ctx context.Context, email, password string) error {
	q := url.Values{}
	q.Set("grant_type", "password")
	body, err := a.t.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   passwordGrant{Email: email, Password: password},
	})
	if err != nil {
		return authError(err)
	}

	tok, err := a.tokenFrom(body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	if err := a.setToken(tok); err != nil {
		a.logger.Error("failed to persist session", "error", err)
	}

	user := tok.User()
	a.emit(&user)
	a.schedule()
	return nil
}

// SignOut revokes the session server-side and reports it ended. A token the
// backend already considers invalid still signs out locally.
func (a *Auth) SignOut(ctx context.Context) error {
	tok := a.currentToken()
	if tok != nil {
		_, err := a.t.do(ctx, request{
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			bearer: tok.AccessToken,
		})
		if err != nil {
			serr, ok := asStatus(err)
			if !ok || (serr.Status != http.StatusUnauthorized && serr.Status != http.StatusForbidden && serr.Status != http.StatusNotFound) {
				return authError(err)
			}
		}
	}

	a.dropToken()
	a.emit(nil)
	return nil
}

func (a *Auth) OnSessionChange(fn func(*domain.AuthUser)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// AccessToken returns the current access token, "" when signed out
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return ""
	}
	return a.token.AccessToken
}

// Close stops the renewal timer. No events are emitted afterwards.
func (a *Auth) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	return nil
}

// refresh trades a refresh token for a new pair and stores it
func (a *Auth) refresh(ctx context.Context, refreshToken string) (*domain.AuthToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", domain.ErrAuth)
	}
	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	body, err := a.t.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   refreshGrant{RefreshToken: refreshToken},
	})
	if err != nil {
		if serr, ok := asStatus(err); ok && serr.Status < 500 {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuth, err)
		}
		return nil, err
	}

	tok, err := a.tokenFrom(body)
	if err != nil {
		return nil, err
	}
	if err := a.setToken(tok); err != nil {
		a.logger.Error("failed to persist session", "error", err)
	}
	a.logger.Debug("access token renewed", "expires_at", tok.ExpiresAt)
	return &tok, nil
}

// onTimer renews the token in the background. If renewal fails and the
// token has run out, the session ends.
func (a *Auth) onTimer() {
	tok := a.currentToken()
	if tok == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timerTimeout)
	defer cancel()

	renewed, err := a.refresh(ctx, tok.RefreshToken)
	if err == nil {
		user := renewed.User()
		a.emit(&user)
		a.schedule()
		return
	}

	if errors.Is(err, domain.ErrAuth) || tok.Expired(a.now()) {
		a.logger.Info("session expired", "error", err)
		a.dropToken()
		a.emit(nil)
		return
	}

	// Try once more when the token actually runs out
	a.logger.Warn("failed to renew access token", "error", err)
	a.mu.Lock()
	if !a.closed && a.token != nil {
		a.timer = time.AfterFunc(a.token.ExpiresAt.Sub(a.now()), a.onTimer)
	}
	a.mu.Unlock()
}

// schedule arms the renewal timer for the current token
func (a *Auth) schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.closed || a.token == nil || a.token.ExpiresAt.IsZero() {
		return
	}
	wait := a.token.ExpiresAt.Sub(a.now()) - refreshMargin
	if wait < 0 {
		wait = 0
	}
	a.timer = time.AfterFunc(wait, a.onTimer)
}

func (a *Auth) setToken(tok domain.AuthToken) error {
	a.mu.Lock()
	a.token = &tok
	a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	return a.store.SaveToken(tok)
}

func (a *Auth) dropToken() {
	a.mu.Lock()
	a.token = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.ClearToken(); err != nil {
			a.logger.Error("failed to clear persisted session", "error", err)
		}
	}
}

func (a *Auth) currentToken() *domain.AuthToken {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return nil
	}
	tok := *a.token
	return &tok
}

// tokenFrom builds a token from a token-endpoint answer. Identity and
// expiry come from the access token claims when the envelope lacks them.
func (a *Auth) tokenFrom(body []byte) (domain.AuthToken, error) {
	var resp tokenResponse
	if err := decodeJSON(body, &resp); err != nil {
		return domain.AuthToken{}, err
	}
	if resp.AccessToken == "" {
		return domain.AuthToken{}, errors.New("token response has no access token")
	}

	tok := domain.AuthToken{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, &claims); err == nil {
		if tok.UserID == "" {
			tok.UserID = claims.Subject
		}
		if tok.Email == "" {
			tok.Email = claims.Email
		}
		if claims.ExpiresAt != nil {
			tok.ExpiresAt = claims.ExpiresAt.Time
		}
	} else {
		a.logger.Debug("access token is not a readable JWT", "error", err)
	}

	if tok.ExpiresAt.IsZero() {
		switch {
		case resp.ExpiresAt > 0:
			tok.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
		case resp.ExpiresIn > 0:
			tok.ExpiresAt = a.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		}
	}
	tok.ExpiresAt = tok.ExpiresAt.UTC()
	return tok, nil
}

// emit delivers a session change to every listener in registration order
func (a *Auth) emit(user *domain.AuthUser) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(a.listeners))
	for id := range a.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(*domain.AuthUser), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, a.listeners[id])
	}
	a.mu.Unlock()

	for _, fn := range fns {
		if user == nil {
			fn(nil)
			continue
		}
		u := *user
		fn(&u)
	}
}

// authError classifies a failed sign-in/sign-out round trip
func authError(err error) error {
	if serr, ok := asStatus(err); ok {
		return fmt.Errorf("%w: %s", domain.ErrAuth, serr.Msg)
	}
	return fmt.Errorf("%w: %w", domain.ErrAuth, err)
}
