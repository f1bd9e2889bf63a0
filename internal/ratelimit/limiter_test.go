package ratelimit

import (
	"testing"
	"time"
)

func TestNewLimiter_DisabledReturnsNil(t *testing.T) {
	if l := NewLimiter(0, 10); l != nil {
		t.Fatal("expected nil limiter for zero rps")
	}
	if l := NewLimiter(5, 0); l != nil {
		t.Fatal("expected nil limiter for zero burst")
	}

	var l *Limiter
	if !l.Allow("10.0.0.1", time.Now()) {
		t.Fatal("nil limiter must allow")
	}
	l.Stop()
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := NewLimiter(1, 3)
	defer l.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", now) {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if l.Allow("10.0.0.1", now) {
		t.Fatal("expected request beyond burst to be denied")
	}
	if !l.Allow("10.0.0.2", now) {
		t.Fatal("expected other client to have its own bucket")
	}
	if !l.Allow("10.0.0.1", now.Add(time.Second)) {
		t.Fatal("expected token to refill after one second")
	}
}

func TestLimiter_EmptyKeyAlwaysAllowed(t *testing.T) {
	l := NewLimiter(1, 1)
	defer l.Stop()

	now := time.Now()
	for i := 0; i < 5; i++ {
		if !l.Allow("  ", now) {
			t.Fatal("expected empty key to bypass limiting")
		}
	}
	if l.Tracked() != 0 {
		t.Fatalf("expected no buckets for empty key, got %d", l.Tracked())
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	l := NewLimiter(1, 1)
	defer l.Stop()

	now := time.Now()
	l.Allow("old", now.Add(-2*IdleTTL))
	l.Allow("fresh", now)

	l.evictIdle(now)

	if l.Tracked() != 1 {
		t.Fatalf("expected only fresh bucket to remain, got %d", l.Tracked())
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(1, 1)
	l.Stop()
	l.Stop()
}
