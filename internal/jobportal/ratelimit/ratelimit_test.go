package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCounter) IncrementWithExpiry(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	m.ttls[key] = ttl
	return m.counts[key], nil
}

func TestLimiterAllow(t *testing.T) {
	counter := newMemoryCounter()
	limiter := NewLimiter(counter, 3, zaptest.NewLogger(t))
	current := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	alice := Key("apply", "alice")

	for i := 1; i <= 3; i++ {
		if !limiter.Allow(ctx, alice) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Allow(ctx, alice) {
		t.Error("fourth request in the same window should be rejected")
	}
	if !limiter.Allow(ctx, Key("apply", "bob")) {
		t.Error("other callers keep their own budget")
	}
	if !limiter.Allow(ctx, Key("search", "alice")) {
		t.Error("scopes are counted separately")
	}

	current = current.Add(Window)
	if !limiter.Allow(ctx, alice) {
		t.Error("a new window resets the budget")
	}

	for key, ttl := range counter.ttls {
		if ttl != Window {
			t.Errorf("key %s expires after %v, want %v", key, ttl, Window)
		}
	}
}

func TestLimiterFailsOpen(t *testing.T) {
	counter := newMemoryCounter()
	counter.err = errors.New("connection refused")
	limiter := NewLimiter(counter, 1, zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		if !limiter.Allow(context.Background(), Key("search", "carol")) {
			t.Fatal("requests must pass while the counter is unavailable")
		}
	}
}

func TestKey(t *testing.T) {
	if got, want := Key("apply", "42"), "jobportal:ratelimit:apply:42"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}
