package main

import (
	"errors"
	"net/http"
	"strings"
)

// GET /api/requests?from=&to=&status=
func (a *api) handleQueryRequests(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	q := r.URL.Query()
	f := RequestFilter{From: q.Get("from"), To: q.Get("to"), Status: q.Get("status")}
	if f.From == "" && f.To == "" {
		writeError(w, 400, "from or to required")
		return
	}
	if f.From != me.ID && f.To != me.ID {
		writeError(w, 403, "forbidden")
		return
	}
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusAccepted {
		writeError(w, 400, "invalid status")
		return
	}
	reqs, err := a.store.QueryRequests(r.Context(), f)
	if err != nil {
		a.log.Error("query requests", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeJSON(w, 200, map[string]any{"requests": reqs})
}

// POST /api/requests {to}
func (a *api) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	var req struct {
		To string `json:"to"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.To) == "" {
		writeError(w, 400, "invalid payload")
		return
	}
	if req.To == me.ID {
		writeError(w, 400, "cannot connect to yourself")
		return
	}
	created, err := a.store.CreateRequest(r.Context(), me.ID, req.To)
	switch {
	case errors.Is(err, ErrConflict):
		writeError(w, 409, "request already exists")
		return
	case errors.Is(err, ErrNotFound):
		writeError(w, 404, "user not found")
		return
	case errors.Is(err, ErrInvalid):
		writeError(w, 400, "invalid request")
		return
	case err != nil:
		a.log.Error("create request", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	a.publish(EventRequestCreated, created)
	writeJSON(w, 201, map[string]any{"ok": true, "request": created})
}

// DELETE /api/requests/{id}
func (a *api) handleWithdrawRequest(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	removed, err := a.store.WithdrawRequest(r.Context(), r.PathValue("id"), me.ID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, 404, "not found")
		return
	}
	if err != nil {
		a.log.Error("withdraw request", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	a.publish(EventRequestWithdrawn, removed)
	writeJSON(w, 200, map[string]any{"ok": true})
}

// POST /api/requests/{id}/accept
func (a *api) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	accepted, err := a.store.AcceptRequest(r.Context(), r.PathValue("id"), me.ID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, 404, "not found")
		return
	}
	if err != nil {
		a.log.Error("accept request", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	a.publish(EventRequestAccepted, accepted)
	writeJSON(w, 200, map[string]any{"ok": true, "request": accepted})
}

// GET /api/events
func (a *api) handleEvents(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	a.bus.ServeSSE(w, r, me.ID)
}

func (a *api) publish(typ string, req Request) {
	connectionEvents.WithLabelValues(typ).Inc()
	a.bus.Publish(Event{Type: typ, Request: req})
}
