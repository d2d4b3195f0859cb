package connect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// HTTPBackend talks to the hackpulse server API with a session cookie.
type HTTPBackend struct {
	base   string
	client *http.Client
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message) }

func NewHTTPBackend(baseURL string, timeout time.Duration) (*HTTPBackend, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPBackend{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

type apiMember struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Skills     []string `json:"skills"`
	LookingFor string   `json:"looking_for"`
	Avatar     string   `json:"avatar"`
}

type apiRequest struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"timestamp"`
}

// Login starts a session for the given credentials.
func (b *HTTPBackend) Login(ctx context.Context, email, password string) error {
	return b.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
}

func (b *HTTPBackend) Logout(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (b *HTTPBackend) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	switch collection {
	case CollectionUsers:
		var out struct {
			Members []apiMember `json:"members"`
		}
		if err := b.do(ctx, http.MethodGet, "/api/members", nil, &out); err != nil {
			return nil, err
		}
		docs := make([]Document, 0, len(out.Members))
		for _, m := range out.Members {
			docs = append(docs, Document{ID: m.ID, Fields: map[string]any{
				"name":        m.Name,
				"role":        m.Role,
				"skills":      m.Skills,
				"looking_for": m.LookingFor,
				"avatar":      m.Avatar,
			}})
		}
		return docs, nil
	case CollectionRequests:
		q := url.Values{}
		for _, f := range filters {
			q.Set(f.Field, f.Value)
		}
		var out struct {
			Requests []apiRequest `json:"requests"`
		}
		if err := b.do(ctx, http.MethodGet, "/api/requests?"+q.Encode(), nil, &out); err != nil {
			return nil, err
		}
		docs := make([]Document, 0, len(out.Requests))
		for _, r := range out.Requests {
			docs = append(docs, Document{ID: r.ID, Fields: map[string]any{
				"from":      r.From,
				"to":        r.To,
				"status":    r.Status,
				"timestamp": r.CreatedAt,
			}})
		}
		return docs, nil
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}

// Create supports only connection requests; the server fills in the
// sender from the session.
func (b *HTTPBackend) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if collection != CollectionRequests {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	to, _ := fields["to"].(string)
	var out struct {
		Request apiRequest `json:"request"`
	}
	if err := b.do(ctx, http.MethodPost, "/api/requests", map[string]string{"to": to}, &out); err != nil {
		return "", err
	}
	if out.Request.ID == "" {
		return "", fmt.Errorf("create request: %w: response without id", ErrDecode)
	}
	return out.Request.ID, nil
}

func (b *HTTPBackend) Delete(ctx context.Context, collection, id string) error {
	if collection != CollectionRequests {
		return fmt.Errorf("unknown collection %q", collection)
	}
	return b.do(ctx, http.MethodDelete, "/api/requests/"+url.PathEscape(id), nil, nil)
}

func (b *HTTPBackend) CurrentUser(ctx context.Context) (string, error) {
	var out struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return "", err
	}
	if out.User == nil {
		return "", nil
	}
	return out.User.ID, nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body, dst any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(raw, &env) != nil || env.Error == "" {
			env.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
