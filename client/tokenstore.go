package client

import (
	"sync"

	"github.com/zalando/go-keyring"
)

// Token storage keys, fixed by contract with the session adapter.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// TokenStore is the persistent key-value storage holding the session tokens.
// A missing key reads as the empty string, never an error.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// KeyringStore keeps tokens in the OS keychain under a service name.
type KeyringStore struct {
	Service string
}

func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{Service: service}
}

func (s *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(s.Service, key)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *KeyringStore) Set(key, value string) error {
	return keyring.Set(s.Service, key, value)
}

func (s *KeyringStore) Remove(key string) error {
	err := keyring.Delete(s.Service, key)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// MemoryStore is an in-process TokenStore used in tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
