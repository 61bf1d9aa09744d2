// Package state holds the client-side session state: the current identity
// and the cart, with the guest/authenticated dual-backend semantics and
// the merge-on-login reconciliation between them.
package state

import (
	"context"
	"io"
	"log"
	"sync"

	"storefront/internal/domain"
)

type authAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Profile(ctx context.Context) (*domain.User, error)
}

type credentialStore interface {
	Token() string
	SetToken(token string)
	ClearToken()
}

// Auth resolves and holds the current identity. A nil user means guest.
// Dependents subscribe to identity transitions; the cart uses this to
// trigger its merge-then-refresh after login.
type Auth struct {
	api    authAPI
	creds  credentialStore
	logger *log.Logger

	mu   sync.Mutex
	user *domain.User
	subs []func(user *domain.User)
}

func NewAuth(api authAPI, creds credentialStore, logger *log.Logger) *Auth {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Auth{api: api, creds: creds, logger: logger}
}

// Subscribe registers fn to run on every identity transition. fn receives
// the new identity (nil on logout).
func (a *Auth) Subscribe(fn func(user *domain.User)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = append(a.subs, fn)
}

// Current returns the resolved identity, or nil for guest.
func (a *Auth) Current() *domain.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *Auth) Authenticated() bool {
	return a.Current() != nil
}

// Resolve settles the identity from a previously stored token. A rejected
// or unusable token is discarded and the state settles to guest; Resolve
// never fails the startup path.
func (a *Auth) Resolve(ctx context.Context) {
	if a.creds.Token() == "" {
		return
	}
	user, err := a.api.Profile(ctx)
	if err != nil {
		a.logger.Printf("auth: stored token rejected, settling to guest: %v", err)
		a.creds.ClearToken()
		return
	}
	a.setUser(user)
}

// Login exchanges credentials for a token, persists it, and resolves the
// identity. On any failure the prior identity is untouched and no token
// is left behind.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.creds.SetToken(token)

	user, err := a.api.Profile(ctx)
	if err != nil {
		a.creds.ClearToken()
		return err
	}
	a.setUser(user)
	return nil
}

// Logout discards the token and clears identity. No network call.
func (a *Auth) Logout() {
	a.creds.ClearToken()
	a.setUser(nil)
}

// Register creates an account. It does not establish a session; callers
// log in separately.
func (a *Auth) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return a.api.Register(ctx, email, password)
}

// SessionExpired is the uniform reaction to a 401 from any authenticated
// call: drop the token and identity.
func (a *Auth) SessionExpired() {
	a.logger.Printf("auth: session expired")
	a.Logout()
}

func (a *Auth) setUser(user *domain.User) {
	a.mu.Lock()
	a.user = user
	subs := make([]func(*domain.User), len(a.subs))
	copy(subs, a.subs)
	a.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
