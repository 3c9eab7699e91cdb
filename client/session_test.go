package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts the auth provider: a canned initial session (or error)
// plus a hand-driven event stream.
type fakeProvider struct {
	mu             sync.Mutex
	session        *Session
	sessionErr     error
	signOutCalls   int
	signOutErr     error
	events         chan *Session
	unsubscribed   bool
	passwordLogins int
}

func newFakeProvider(session *Session, err error) *fakeProvider {
	return &fakeProvider{session: session, sessionErr: err, events: make(chan *Session, 4)}
}

func (f *fakeProvider) GetSession(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordLogins++
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignInWithOAuth(ctx context.Context, identityToken string) (*Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignOut(ctx context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) AuthStateChanges() (<-chan *Session, func()) {
	return f.events, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed = true
	}
}

func demoSession() *Session {
	return &Session{
		User:         User{ID: 7, Email: "admin@x.com", Role: "admin"},
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
	}
}

func waitUntilLoaded(t *testing.T, a *SessionAdapter) {
	t.Helper()
	require.Eventually(t, func() bool { return !a.Loading() }, time.Second, 5*time.Millisecond)
}

func TestInitialCheckStoresUserAndTokens(t *testing.T) {
	provider := newFakeProvider(demoSession(), nil)
	store := NewMemoryStore()

	adapter := NewSessionAdapter(context.Background(), provider, store, nil)
	defer adapter.Close()
	waitUntilLoaded(t, adapter)

	user := adapter.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "admin@x.com", user.Email)

	access, _ := store.Get(KeyAccessToken)
	refresh, _ := store.Get(KeyRefreshToken)
	assert.Equal(t, "access-abc", access)
	assert.Equal(t, "refresh-def", refresh)
}

func TestInitialCheckAbsentSessionClearsStorage(t *testing.T) {
	provider := newFakeProvider(nil, nil)
	store := NewMemoryStore()
	store.Set(KeyAccessToken, "stale")
	store.Set(KeyRefreshToken, "stale")

	adapter := NewSessionAdapter(context.Background(), provider, store, nil)
	defer adapter.Close()
	waitUntilLoaded(t, adapter)

	assert.Nil(t, adapter.CurrentUser())
	access, _ := store.Get(KeyAccessToken)
	refresh, _ := store.Get(KeyRefreshToken)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestProviderErrorFailsOpenToLoggedOut(t *testing.T) {
	provider := newFakeProvider(nil, errors.New("provider down"))
	store := NewMemoryStore()
	store.Set(KeyAccessToken, "stale")

	adapter := NewSessionAdapter(context.Background(), provider, store, nil)
	defer adapter.Close()
	waitUntilLoaded(t, adapter)

	assert.Nil(t, adapter.CurrentUser())
	access, _ := store.Get(KeyAccessToken)
	assert.Empty(t, access)
}

func TestAuthEventsReapplyMirroring(t *testing.T) {
	provider := newFakeProvider(nil, nil)
	store := NewMemoryStore()

	adapter := NewSessionAdapter(context.Background(), provider, store, nil)
	defer adapter.Close()
	waitUntilLoaded(t, adapter)
	require.Nil(t, adapter.CurrentUser())

	provider.events <- demoSession()
	require.Eventually(t, func() bool { return adapter.CurrentUser() != nil }, time.Second, 5*time.Millisecond)
	access, _ := store.Get(KeyAccessToken)
	assert.Equal(t, "access-abc", access)

	provider.events <- nil
	require.Eventually(t, func() bool { return adapter.CurrentUser() == nil }, time.Second, 5*time.Millisecond)
	access, _ = store.Get(KeyAccessToken)
	assert.Empty(t, access)
}

func TestSignOutClearsStateAndNavigates(t *testing.T) {
	provider := newFakeProvider(demoSession(), nil)
	store := NewMemoryStore()

	var gotRoute string
	adapter := NewSessionAdapter(context.Background(), provider, store, func(route string) { gotRoute = route })
	defer adapter.Close()
	waitUntilLoaded(t, adapter)
	require.NotNil(t, adapter.CurrentUser())

	adapter.SignOut(context.Background())

	assert.Nil(t, adapter.CurrentUser())
	assert.Equal(t, "/login", gotRoute)
	assert.Equal(t, 1, provider.signOutCalls)
	access, _ := store.Get(KeyAccessToken)
	refresh, _ := store.Get(KeyRefreshToken)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestSignOutStillClearsWhenProviderFails(t *testing.T) {
	provider := newFakeProvider(demoSession(), nil)
	provider.signOutErr = errors.New("network gone")
	store := NewMemoryStore()

	adapter := NewSessionAdapter(context.Background(), provider, store, nil)
	defer adapter.Close()
	waitUntilLoaded(t, adapter)

	adapter.SignOut(context.Background())
	assert.Nil(t, adapter.CurrentUser())
}

func TestCloseUnsubscribes(t *testing.T) {
	provider := newFakeProvider(nil, nil)
	adapter := NewSessionAdapter(context.Background(), provider, NewMemoryStore(), nil)
	waitUntilLoaded(t, adapter)

	adapter.Close()
	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.True(t, provider.unsubscribed)
}
