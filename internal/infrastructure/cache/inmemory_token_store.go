package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryTokenStore implements TokenStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryTokenStore struct {
	mu        sync.RWMutex
	tokens    map[string]Token
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTokenStore creates a new in-memory token store.
// It starts a background goroutine to clean up expired tokens.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	store := &InMemoryTokenStore{
		tokens:   make(map[string]Token),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

var _ TokenStore = (*InMemoryTokenStore)(nil)

// Get returns the stored token for the key
func (s *InMemoryTokenStore) Get(_ context.Context, key string) (Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[key]
	if !exists || !time.Now().Before(token.ExpiresAt) {
		return Token{}, false, nil
	}
	return token, true, nil
}

// Put stores the token under the key
func (s *InMemoryTokenStore) Put(_ context.Context, key string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[key] = token
	return nil
}

// Delete removes the stored token for the key
func (s *InMemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryTokenStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired tokens
func (s *InMemoryTokenStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired tokens from the store
func (s *InMemoryTokenStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, token := range s.tokens {
		if now.After(token.ExpiresAt) {
			delete(s.tokens, key)
		}
	}
}
