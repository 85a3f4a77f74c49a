package token

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TokenStore is a thread-safe in-memory store for active access tokens.
// Tokens expire autonomously: Valid checks expiry on use, and a background
// sweep removes expired entries periodically. There is no revocation path.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]AccessToken

	sweepInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
	once          sync.Once
	logger        *slog.Logger
}

// NewTokenStore creates a token store with the default sweep interval.
func NewTokenStore(logger *slog.Logger) *TokenStore {
	return NewTokenStoreWithInterval(DefaultSweepInterval, logger)
}

// NewTokenStoreWithInterval creates a token store with a custom sweep interval.
func NewTokenStoreWithInterval(sweepInterval time.Duration, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{
		tokens:        make(map[string]AccessToken),
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// Insert stores an access token keyed by its own value.
func (s *TokenStore) Insert(tok AccessToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok.Token] = tok
}

// Valid reports whether the token is present and unexpired.
// An expired token fails validation even before the sweep removes it.
func (s *TokenStore) Valid(tok string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.tokens[tok]
	if !ok {
		return false
	}
	return !stored.IsExpired(time.Now().UTC())
}

// Len returns the number of stored tokens, including not-yet-swept expired ones.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// StartSweep starts the background sweep goroutine.
// Call Stop to terminate it gracefully.
func (s *TokenStore) StartSweep(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep removes all tokens whose expiry has passed and returns the count
// removed. Entries exactly at the boundary are retained.
func (s *TokenStore) Sweep() int {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for key, tok := range s.tokens {
		if tok.IsExpired(now) {
			delete(s.tokens, key)
			swept++
		}
	}

	if swept > 0 {
		s.logger.Debug("swept expired access tokens", "count", swept)
	}
	return swept
}

// Stop terminates the sweep goroutine and waits for it to exit.
// Safe to call multiple times.
func (s *TokenStore) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}
