package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPLimiter_BurstThenShed(t *testing.T) {
	l := newIPLimiter(1, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.take("31.13.64.1", now) {
			t.Fatalf("delivery %d should be within burst", i+1)
		}
	}
	if l.take("31.13.64.1", now) {
		t.Fatalf("expected burst to be spent")
	}
	// Another delivery source is unaffected.
	if !l.take("31.13.64.2", now) {
		t.Fatalf("expected independent allowance per source")
	}
}

func TestIPLimiter_RefillsOverTime(t *testing.T) {
	l := newIPLimiter(2, 2)
	now := time.Now()

	l.take("31.13.64.1", now)
	l.take("31.13.64.1", now)
	if l.take("31.13.64.1", now) {
		t.Fatalf("expected burst to be spent")
	}

	// One second at 2 tokens/sec restores two deliveries.
	later := now.Add(time.Second)
	if !l.take("31.13.64.1", later) || !l.take("31.13.64.1", later) {
		t.Fatalf("expected refill after a second")
	}
	if l.take("31.13.64.1", later) {
		t.Fatalf("refill must not exceed the burst cap")
	}
}

func TestRateLimit_Returns429WithRetryAfter(t *testing.T) {
	mw := RateLimit(0.5, 1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/facebook/leads?org_id=org-1", nil)
		req.Header.Set("X-Real-Ip", "31.13.64.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusAccepted {
		t.Fatalf("first delivery should pass, got %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After hint")
	}
}

func TestSourceIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/facebook/leads", nil)
	req.RemoteAddr = "31.13.64.9:54012"
	if got := sourceIP(req); got != "31.13.64.9" {
		t.Fatalf("expected peer host without port, got %q", got)
	}

	req.Header.Set("X-Real-Ip", "66.220.144.3")
	if got := sourceIP(req); got != "66.220.144.3" {
		t.Fatalf("expected X-Real-Ip to win, got %q", got)
	}
}
