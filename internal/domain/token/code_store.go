package token

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is the default interval between expiry sweeps.
const DefaultSweepInterval = 1 * time.Minute

// CodeStore is a thread-safe in-memory store for pending authorization codes.
// Codes are single-use: Consume removes the code atomically with lookup so a
// code can never be exchanged twice, even by concurrent callers.
// A background sweep removes expired codes periodically to bound memory
// growth from abandoned flows.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]AuthCode

	sweepInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
	once          sync.Once
	logger        *slog.Logger
}

// NewCodeStore creates a code store with the default sweep interval.
func NewCodeStore(logger *slog.Logger) *CodeStore {
	return NewCodeStoreWithInterval(DefaultSweepInterval, logger)
}

// NewCodeStoreWithInterval creates a code store with a custom sweep interval.
func NewCodeStoreWithInterval(sweepInterval time.Duration, logger *slog.Logger) *CodeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CodeStore{
		codes:         make(map[string]AuthCode),
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// Insert stores a pending authorization code keyed by its own value.
func (s *CodeStore) Insert(code AuthCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = code
}

// Consume looks up a code and deletes it in the same critical section.
// Returns false if the code is absent or already expired; an expired code
// is deleted on the way out (expiry is checked on use, not only on sweep).
func (s *CodeStore) Consume(code string) (AuthCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[code]
	if !ok {
		return AuthCode{}, false
	}
	delete(s.codes, code)

	if stored.IsExpired(time.Now().UTC()) {
		return AuthCode{}, false
	}
	return stored, true
}

// Len returns the number of pending codes.
func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// StartSweep starts the background sweep goroutine.
// Call Stop to terminate it gracefully.
func (s *CodeStore) StartSweep(ctx context.Context) {
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

// Sweep removes all codes whose expiry has passed and returns the count
// removed. Entries exactly at the boundary are retained.
func (s *CodeStore) Sweep() int {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for key, code := range s.codes {
		if code.IsExpired(now) {
			delete(s.codes, key)
			swept++
		}
	}

	if swept > 0 {
		s.logger.Debug("swept expired authorization codes", "count", swept)
	}
	return swept
}

// Stop terminates the sweep goroutine and waits for it to exit.
// Safe to call multiple times.
func (s *CodeStore) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}
