package client

import (
	"context"
	"log"
	"sync"
)

// User is the identity-provider user mirrored into local state.
type User struct {
	ID        uint   `json:"ID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Session is what the auth provider hands back on sign-in or session check.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// AuthProvider is the external identity provider, treated as an opaque
// collaborator. GetSession returns (nil, nil) when no session exists.
type AuthProvider interface {
	GetSession(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithOAuth(ctx context.Context, identityToken string) (*Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	// AuthStateChanges returns a stream of session events (nil means signed
	// out) and an unsubscribe function.
	AuthStateChanges() (<-chan *Session, func())
}

// SessionAdapter mediates between the auth provider and local UI state: it
// holds the current user, mirrors the token pair into the TokenStore, and
// exposes a loading flag that is true until the first session check resolves.
//
// Construct one at application root and pass it down; it is not a global.
type SessionAdapter struct {
	provider AuthProvider
	store    TokenStore
	navigate func(route string)

	mu      sync.Mutex
	user    *User
	loading bool

	loadedOnce  sync.Once
	unsubscribe func()
	done        chan struct{}
}

// NewSessionAdapter runs the initial session check asynchronously and
// subscribes to the provider's auth-state stream for the adapter's lifetime.
// navigate is called with a route ("/login") on sign-out; it may be nil.
func NewSessionAdapter(ctx context.Context, provider AuthProvider, store TokenStore, navigate func(route string)) *SessionAdapter {
	a := &SessionAdapter{
		provider: provider,
		store:    store,
		navigate: navigate,
		loading:  true,
		done:     make(chan struct{}),
	}

	events, unsubscribe := provider.AuthStateChanges()
	a.unsubscribe = unsubscribe

	go a.checkSession(ctx)
	go a.watch(events)

	return a
}

// checkSession applies the provider's current session. Provider errors are
// logged and treated as "no session": the app starts signed out, not broken.
func (a *SessionAdapter) checkSession(ctx context.Context) {
	session, err := a.provider.GetSession(ctx)
	if err != nil {
		log.Println("session check failed:", err)
		session = nil
	}
	a.apply(session)
	a.markLoaded()
}

func (a *SessionAdapter) watch(events <-chan *Session) {
	for {
		select {
		case session, ok := <-events:
			if !ok {
				return
			}
			a.apply(session)
			a.markLoaded()
		case <-a.done:
			return
		}
	}
}

// apply mirrors a session event into local state: store user and both tokens
// on sign-in, clear all three on sign-out or absent session.
func (a *SessionAdapter) apply(session *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if session != nil {
		user := session.User
		a.user = &user
		a.store.Set(KeyAccessToken, session.AccessToken)
		a.store.Set(KeyRefreshToken, session.RefreshToken)
		return
	}
	a.user = nil
	a.store.Remove(KeyAccessToken)
	a.store.Remove(KeyRefreshToken)
}

func (a *SessionAdapter) markLoaded() {
	a.loadedOnce.Do(func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	})
}

// CurrentUser returns the signed-in user, or nil.
func (a *SessionAdapter) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// Loading is true until the first session check has resolved.
func (a *SessionAdapter) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// SignOut signs out at the provider, clears local user state and both stored
// tokens, and navigates to the login view.
func (a *SessionAdapter) SignOut(ctx context.Context) {
	refreshToken, _ := a.store.Get(KeyRefreshToken)
	if err := a.provider.SignOut(ctx, refreshToken); err != nil {
		log.Println("provider sign-out failed:", err)
	}
	a.apply(nil)
	if a.navigate != nil {
		a.navigate("/login")
	}
}

// Close unsubscribes from the provider's auth-state stream.
func (a *SessionAdapter) Close() {
	close(a.done)
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}
