package main

import (
	"context"
	"net/http"
	"time"
)

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	db := "ok"
	if a.store == nil {
		db = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.store.Ping(ctx); err != nil {
			a.log.Warn("health: db ping", "err", err)
			writeJSON(w, 503, map[string]any{"ok": false, "db": "down", "ts": time.Now().UTC().Format(time.RFC3339)})
			return
		}
	}
	writeJSON(w, 200, map[string]any{"ok": true, "db": db, "ts": time.Now().UTC().Format(time.RFC3339)})
}
