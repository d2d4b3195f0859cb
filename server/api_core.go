package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type api struct {
	store *Store
	cfg   Config
	log   *slog.Logger
	bus   *EventBus
	chat  *http.Client
	now   func() time.Time
	// rate limiters per IP:key
	rlMu    sync.Mutex
	rl      map[string]*rate.Limiter
	rlSwept time.Time
}

// limiterSweep is how often full limiters are dropped from the map.
const limiterSweep = time.Minute

func newAPI(store *Store, cfg Config, log *slog.Logger) *api {
	return &api{
		store: store,
		cfg:   cfg,
		log:   log,
		bus:   NewEventBus(),
		chat:  &http.Client{Timeout: cfg.Chat.Timeout},
		now:   time.Now,
		rl:    map[string]*rate.Limiter{},
	}
}

func (a *api) routes(mux *http.ServeMux) {
	auth := a.cfg.Limits
	mux.HandleFunc("POST /api/auth/register", a.withRateLimit("auth", auth.AuthPerMinute, auth.AuthBurst, a.handleRegister))
	mux.HandleFunc("POST /api/auth/login", a.withRateLimit("auth", auth.AuthPerMinute, auth.AuthBurst, a.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	mux.HandleFunc("GET /api/auth/me", a.handleMe)
	mux.HandleFunc("PATCH /api/me", a.requireAuth(a.handleUpdateMe))

	mux.HandleFunc("GET /api/members", a.handleMembers)
	mux.HandleFunc("GET /api/requests", a.requireAuth(a.handleQueryRequests))
	mux.HandleFunc("POST /api/requests", a.requireAuth(a.handleCreateRequest))
	mux.HandleFunc("DELETE /api/requests/{id}", a.requireAuth(a.handleWithdrawRequest))
	mux.HandleFunc("POST /api/requests/{id}/accept", a.requireAuth(a.handleAcceptRequest))
	mux.HandleFunc("GET /api/events", a.requireAuth(a.handleEvents))

	mux.HandleFunc("GET /api/hackathons", a.handleHackathons)
	mux.HandleFunc("GET /api/winners", a.handleWinners)
	mux.HandleFunc("GET /api/team-requests", a.handleTeamRequests)

	// any method reaches the handler so non-POST gets the proxy's own 405
	mux.HandleFunc("/api/chat", a.withRateLimit("chat", auth.ChatPerMinute, auth.ChatBurst, a.handleChat))

	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (a *api) allow(ip, key string, perMinute, burst int) bool {
	if perMinute <= 0 {
		return true
	}
	now := a.now()
	rk := ip + ":" + key
	a.rlMu.Lock()
	if now.Sub(a.rlSwept) >= limiterSweep {
		a.sweepLimiters(now)
	}
	l, ok := a.rl[rk]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(perMinute)/60), max(burst, 1))
		a.rl[rk] = l
	}
	a.rlMu.Unlock()
	return l.AllowN(now, 1)
}

// sweepLimiters drops limiters whose bucket has refilled; a new one
// behaves the same. Callers hold rlMu.
func (a *api) sweepLimiters(now time.Time) {
	for k, l := range a.rl {
		if l.TokensAt(now) >= float64(l.Burst()) {
			delete(a.rl, k)
		}
	}
	a.rlSwept = now
}

func (a *api) withRateLimit(name string, perMinute, burst int, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.allow(clientIP(r), name, perMinute, burst) {
			rateLimited.WithLabelValues(name).Inc()
			writeError(w, 429, "too many requests")
			return
		}
		next(w, r)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// cookie/session helpers
func (a *api) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Session.Secure,
		SameSite: a.cfg.Session.sameSite(),
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
	})
}
func (a *api) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Session.Secure,
		SameSite: a.cfg.Session.sameSite(),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func (a *api) currentUser(r *http.Request) (*User, error) {
	if u, ok := r.Context().Value(userKey{}).(*User); ok {
		return u, nil
	}
	c, err := r.Cookie(a.cfg.Session.CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}
	u, err := a.store.UserBySession(r.Context(), c.Value)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type userKey struct{}

// requireAuth wraps a handler and enforces a valid session. The user is
// kept on the request context for the handler.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := a.currentUser(r)
		if err != nil {
			writeError(w, 401, "unauthorized")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	}
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		observeRequest(r, sw.status, dur)
		log.Info("http", "method", r.Method, "path", r.URL.Path, "status", sw.status, "dur_ms", dur.Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Implement http.Flusher if underlying writer supports it (needed for SSE)
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
