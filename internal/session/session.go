// Package session keeps the access and refresh tokens in client-local storage.
package session

import (
	"fmt"
	"sync"
)

// Storage is a minimal key/value capability. Get reports ok=false for a
// missing key.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type Kind string

const (
	AccessToken  Kind = "access_token"
	RefreshToken Kind = "refresh_token"
)

type TokenStore struct {
	storage Storage
}

func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Get returns the stored token of the given kind, or "" when absent.
func (s *TokenStore) Get(kind Kind) (string, error) {
	value, ok, err := s.storage.Get(string(kind))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", kind, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

func (s *TokenStore) Set(access, refresh string) error {
	if err := s.storage.Set(string(AccessToken), access); err != nil {
		return fmt.Errorf("write %s: %w", AccessToken, err)
	}
	if err := s.storage.Set(string(RefreshToken), refresh); err != nil {
		return fmt.Errorf("write %s: %w", RefreshToken, err)
	}
	return nil
}

// SetAccess replaces only the access token.
func (s *TokenStore) SetAccess(access string) error {
	if err := s.storage.Set(string(AccessToken), access); err != nil {
		return fmt.Errorf("write %s: %w", AccessToken, err)
	}
	return nil
}

func (s *TokenStore) Clear() error {
	if err := s.storage.Remove(string(AccessToken)); err != nil {
		return fmt.Errorf("remove %s: %w", AccessToken, err)
	}
	if err := s.storage.Remove(string(RefreshToken)); err != nil {
		return fmt.Errorf("remove %s: %w", RefreshToken, err)
	}
	return nil
}

type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Writes counts Set calls since creation.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
