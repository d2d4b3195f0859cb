package main

import "net/http"

// GET /api/members
func (a *api) handleMembers(w http.ResponseWriter, r *http.Request) {
	ms, err := a.store.ListMembers(r.Context())
	if err != nil {
		a.log.Error("list members", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeJSON(w, 200, map[string]any{"members": ms})
}
