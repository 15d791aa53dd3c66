package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestLimiter_AllowsUpToWindowCapacity(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("client-a")
		if !ok {
			t.Fatalf("expected request %d within the window capacity to be allowed", i)
		}
	}
}

func TestLimiter_DeniesBeyondCapacityAndReportsRetryAfter(t *testing.T) {
	l := New(1, time.Minute)
	if ok, _ := l.Allow("client-a"); !ok {
		t.Fatal("expected first request to be allowed")
	}
	ok, retryAfter := l.Allow("client-a")
	if ok {
		t.Fatal("expected second immediate request to be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("expected retry-after within (0, window], got %v", retryAfter)
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := New(1, time.Minute)
	base := time.Now()
	l.now = func() time.Time { return base }

	if ok, _ := l.Allow("client-a"); !ok {
		t.Fatal("expected first request to be allowed")
	}
	if ok, _ := l.Allow("client-a"); ok {
		t.Fatal("expected second request inside the window to be denied")
	}

	// Once the first timestamp slides out of the window, a slot opens.
	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if ok, _ := l.Allow("client-a"); !ok {
		t.Fatal("expected a request after the window slid to be allowed")
	}
}

func TestLimiter_TracksClientsIndependently(t *testing.T) {
	l := New(1, time.Minute)
	if ok, _ := l.Allow("client-a"); !ok {
		t.Fatal("expected client-a first request to be allowed")
	}
	if ok, _ := l.Allow("client-b"); !ok {
		t.Fatal("expected client-b to have its own independent window")
	}
}

func TestLimiter_PrunesStaleClientsWhenOverCapacity(t *testing.T) {
	l := New(1, time.Minute)
	base := time.Now()

	// Fill past the cap with clients whose only activity is outside the
	// window by the time the cap is crossed.
	l.now = func() time.Time { return base }
	for i := 0; i < MaxTrackedClients; i++ {
		l.Allow("stale-" + strconv.Itoa(i))
	}
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	l.Allow("fresh-client")

	if got := l.TrackedClients(); got > MaxTrackedClients {
		t.Fatalf("expected stale clients pruned to at most %d, got %d", MaxTrackedClients, got)
	}
	if ok, _ := l.Allow("fresh-client"); ok {
		t.Fatal("expected fresh-client's window to survive pruning")
	}
}

func TestClientID_PrefersFirstForwardedForToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/pr-webhook", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ClientID(r); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded token, got %q", got)
	}
}

func TestClientID_FallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/pr-webhook", nil)
	r.RemoteAddr = "192.0.2.5:4444"
	if got := ClientID(r); got != "192.0.2.5:4444" {
		t.Fatalf("expected remote addr fallback, got %q", got)
	}
}
