package token

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestCodeStore_InsertAndConsume(t *testing.T) {
	t.Parallel()

	s := NewCodeStore(nil)
	s.Insert(AuthCode{
		Code:        "abc",
		ClientID:    "client-1",
		RedirectURI: "http://localhost/cb",
		ExpiresAt:   time.Now().UTC().Add(5 * time.Minute),
	})

	code, ok := s.Consume("abc")
	if !ok {
		t.Fatal("Consume() returned ok=false for a stored code")
	}
	if code.ClientID != "client-1" {
		t.Errorf("ClientID = %q, want %q", code.ClientID, "client-1")
	}
	if code.RedirectURI != "http://localhost/cb" {
		t.Errorf("RedirectURI = %q, want %q", code.RedirectURI, "http://localhost/cb")
	}
}

// TestCodeStore_ConsumeIsSingleUse verifies a code cannot be consumed twice.
func TestCodeStore_ConsumeIsSingleUse(t *testing.T) {
	t.Parallel()

	s := NewCodeStore(nil)
	s.Insert(AuthCode{Code: "once", ExpiresAt: time.Now().UTC().Add(time.Minute)})

	if _, ok := s.Consume("once"); !ok {
		t.Fatal("first Consume() failed")
	}
	if _, ok := s.Consume("once"); ok {
		t.Error("second Consume() succeeded, want single-use rejection")
	}
}

func TestCodeStore_ConsumeUnknown(t *testing.T) {
	t.Parallel()

	s := NewCodeStore(nil)
	if _, ok := s.Consume("missing"); ok {
		t.Error("Consume() of unknown code returned ok=true")
	}
}

// TestCodeStore_ConsumeExpired verifies expiry is checked on use, not only
// on sweep, and that the expired entry is removed.
func TestCodeStore_ConsumeExpired(t *testing.T) {
	t.Parallel()

	s := NewCodeStore(nil)
	s.Insert(AuthCode{Code: "stale", ExpiresAt: time.Now().UTC().Add(-time.Second)})

	if _, ok := s.Consume("stale"); ok {
		t.Error("Consume() of expired code returned ok=true")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after consuming expired code, want 0", s.Len())
	}
}

func TestCodeStore_SweepRemovesOnlyExpired(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	s := NewCodeStore(nil)
	s.Insert(AuthCode{Code: "expired", ExpiresAt: now.Add(-time.Minute)})
	s.Insert(AuthCode{Code: "live", ExpiresAt: now.Add(time.Hour)})

	if swept := s.Sweep(); swept != 1 {
		t.Errorf("Sweep() = %d, want 1", swept)
	}
	if _, ok := s.Consume("live"); !ok {
		t.Error("Sweep() removed a non-expired code")
	}
}

// TestCodeStore_SweepLoopNoGoroutineLeak verifies the sweep goroutine exits
// on Stop.
func TestCodeStore_SweepLoopNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewCodeStoreWithInterval(10*time.Millisecond, nil)
	s.Insert(AuthCode{Code: "old", ExpiresAt: time.Now().UTC().Add(-time.Minute)})
	s.StartSweep(ctx)

	// Give the loop at least one tick to run.
	deadline := time.Now().Add(time.Second)
	for s.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Len() != 0 {
		t.Error("sweep loop did not remove expired code")
	}

	s.Stop()
	s.Stop() // must be safe to call twice
}
