package main

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	cfg := chatConfig("http://unused", "")
	cfg.Limits.ChatPerMinute = 1
	cfg.Limits.ChatBurst = 2
	a, h := testAPI(t, cfg)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if rec := do(h, http.MethodPost, "/api/chat", `{}`); rec.Code != 500 {
			t.Fatalf("request %d: expected to reach handler, got %d", i, rec.Code)
		}
	}
	rec := do(h, http.MethodPost, "/api/chat", `{}`)
	if rec.Code != 429 {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	now = now.Add(time.Minute)
	if rec := do(h, http.MethodPost, "/api/chat", `{}`); rec.Code == 429 {
		t.Fatal("expected a token after a minute")
	}
}

func TestRateLimitPerClient(t *testing.T) {
	a, _ := testAPI(t, DefaultConfig())
	if !a.allow("1.1.1.1", "auth", 1, 1) {
		t.Fatal("expected first request allowed")
	}
	if a.allow("1.1.1.1", "auth", 1, 1) {
		t.Fatal("expected second request limited")
	}
	if !a.allow("2.2.2.2", "auth", 1, 1) {
		t.Fatal("expected other client allowed")
	}
	if !a.allow("1.1.1.1", "chat", 1, 1) {
		t.Fatal("expected other limiter allowed")
	}
}

func TestRateLimitersEvictedWhenFull(t *testing.T) {
	a, _ := testAPI(t, DefaultConfig())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		a.allow(ip, "auth", 1, 1)
	}
	if len(a.rl) != 3 {
		t.Fatalf("expected 3 limiters, got %d", len(a.rl))
	}

	now = now.Add(30 * time.Second)
	a.allow("4.4.4.4", "auth", 1, 1)
	if len(a.rl) != 4 {
		t.Fatalf("expected no sweep within a minute, got %d limiters", len(a.rl))
	}

	// the first three refill after a minute, the fourth is still draining
	now = now.Add(45 * time.Second)
	if a.allow("4.4.4.4", "auth", 1, 1) {
		t.Error("expected the draining limiter kept")
	}
	if len(a.rl) != 1 {
		t.Errorf("expected only the draining limiter left, got %d", len(a.rl))
	}
	if !a.allow("1.1.1.1", "auth", 1, 1) {
		t.Error("expected an evicted client to start with a full bucket")
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	_, h := testAPI(t, DefaultConfig())
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/requests?from=a"},
		{http.MethodPost, "/api/requests"},
		{http.MethodDelete, "/api/requests/x"},
		{http.MethodPost, "/api/requests/x/accept"},
		{http.MethodPatch, "/api/me"},
		{http.MethodGet, "/api/events"},
	} {
		rec := do(h, tc.method, tc.path, "")
		if rec.Code != 401 {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
			continue
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["ok"] != false || body["error"] != "unauthorized" {
			t.Errorf("%s %s: unexpected body %v", tc.method, tc.path, body)
		}
	}
}

func TestMeAnonymous(t *testing.T) {
	_, h := testAPI(t, DefaultConfig())
	rec := do(h, http.MethodGet, "/api/auth/me", "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if v, ok := body["user"]; !ok || v != nil {
		t.Errorf("expected user: null, got %v", body)
	}
}

func TestHealthWithoutStore(t *testing.T) {
	_, h := testAPI(t, DefaultConfig())
	rec := do(h, http.MethodGet, "/api/health", "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := testAPI(t, DefaultConfig())
	do(h, http.MethodGet, "/api/winners", "")
	rec := do(h, http.MethodGet, "/metrics", "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), `route="GET /api/winners"`) {
		t.Error("expected request counter labeled by route pattern")
	}
}
