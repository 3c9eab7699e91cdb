package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// APIProvider implements AuthProvider against the feedback server's own auth
// endpoints. Sign-ins and sign-outs are broadcast to auth-state subscribers.
type APIProvider struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStore

	mu          sync.Mutex
	subscribers map[int]chan *Session
	nextSubID   int
}

func NewAPIProvider(baseURL string, tokens TokenStore) *APIProvider {
	return &APIProvider{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTP:        http.DefaultClient,
		Tokens:      tokens,
		subscribers: make(map[int]chan *Session),
	}
}

type sessionPayload struct {
	User
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// GetSession checks whether the stored access token still identifies a user.
// No stored token or a rejected token means no session, not an error.
func (p *APIProvider) GetSession(ctx context.Context) (*Session, error) {
	accessToken, _ := p.Tokens.Get(KeyAccessToken)
	if accessToken == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/user/session", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := p.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("session check: unexpected status %d", res.StatusCode)
	}

	var envelope struct {
		Data User `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	refreshToken, _ := p.Tokens.Get(KeyRefreshToken)
	return &Session{
		User:         envelope.Data,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (p *APIProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return p.signIn(ctx, "/user/login", map[string]string{"email": email, "password": password})
}

func (p *APIProvider) SignInWithOAuth(ctx context.Context, identityToken string) (*Session, error) {
	return p.signIn(ctx, "/user/google", map[string]string{"identityToken": identityToken})
}

func (p *APIProvider) signIn(ctx context.Context, path string, body map[string]string) (*Session, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		message := "Failed to sign in"
		if decodeErr := json.NewDecoder(res.Body).Decode(&errBody); decodeErr == nil && errBody.Message != "" {
			message = errBody.Message
		}
		return nil, &APIError{Status: res.StatusCode, Message: message}
	}

	var envelope struct {
		Data sessionPayload `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	session := &Session{
		User:         envelope.Data.User,
		AccessToken:  envelope.Data.AccessToken,
		RefreshToken: envelope.Data.RefreshToken,
	}
	p.broadcast(session)
	return session, nil
}

// SignOut revokes the refresh token server-side and notifies subscribers.
func (p *APIProvider) SignOut(ctx context.Context, refreshToken string) error {
	encoded, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/user/logout", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.HTTP.Do(req)
	if err != nil {
		return err
	}
	res.Body.Close()

	p.broadcast(nil)
	return nil
}

// AuthStateChanges subscribes to sign-in/sign-out events.
func (p *APIProvider) AuthStateChanges() (<-chan *Session, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	ch := make(chan *Session, 8)
	p.subscribers[id] = ch

	unsubscribe := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

func (p *APIProvider) broadcast(session *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subscribers {
		select {
		case ch <- session:
		default: // subscriber is not draining; drop rather than block
		}
	}
}
