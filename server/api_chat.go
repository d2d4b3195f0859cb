package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// chatRequest is the body accepted from the browser. Messages and
// response_format are forwarded untouched; the model is always replaced.
type chatRequest struct {
	Messages       json.RawMessage `json:"messages"`
	Model          string          `json:"model,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

func writeChatError(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// /api/chat proxies an OpenAI-style completion request upstream with the
// server's key and returns the upstream status and JSON as-is.
func (a *api) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	fail := func(err error) {
		a.log.Error("chat proxy", "err", err)
		writeChatError(w, 500, map[string]string{"error": "Internal Server Error", "details": err.Error()})
	}

	var in chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&in); err != nil {
		fail(fmt.Errorf("decode request: %w", err))
		return
	}
	if a.cfg.Chat.APIKey == "" {
		writeChatError(w, 500, map[string]string{"error": "Server Configuration Error: API Key missing"})
		return
	}

	in.Model = a.cfg.Chat.Model
	payload, err := json.Marshal(in)
	if err != nil {
		fail(err)
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, a.cfg.Chat.UpstreamURL, bytes.NewReader(payload))
	if err != nil {
		fail(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.Chat.APIKey)

	start := time.Now()
	resp, err := a.chat.Do(req)
	chatUpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		chatUpstream.WithLabelValues("error").Inc()
		fail(fmt.Errorf("upstream: %w", err))
		return
	}
	defer resp.Body.Close()
	chatUpstream.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(fmt.Errorf("read upstream: %w", err))
		return
	}
	if !json.Valid(body) {
		fail(fmt.Errorf("upstream returned non-JSON body (status %d)", resp.StatusCode))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}
