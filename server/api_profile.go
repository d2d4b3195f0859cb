package main

import (
	"errors"
	"net/http"
	"strings"
)

// PATCH /api/me { name, role, skills, looking_for, avatar, theme }
func (a *api) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	me, _ := a.currentUser(r)
	var req struct {
		Name       *string  `json:"name"`
		Role       *string  `json:"role"`
		Skills     []string `json:"skills"`
		LookingFor *string  `json:"looking_for"`
		Avatar     *string  `json:"avatar"`
		Theme      *string  `json:"theme"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload")
		return
	}
	var p ProfileUpdate
	if req.Name != nil {
		v := strings.TrimSpace(*req.Name)
		if v == "" {
			writeError(w, 400, "name required")
			return
		}
		p.Name = &v
	}
	p.Role = trimmed(req.Role)
	p.LookingFor = trimmed(req.LookingFor)
	p.Avatar = trimmed(req.Avatar)
	if req.Skills != nil {
		p.Skills = []string{}
		for _, s := range req.Skills {
			if s = strings.TrimSpace(s); s != "" {
				p.Skills = append(p.Skills, s)
			}
		}
	}
	if req.Theme != nil {
		v := strings.ToLower(strings.TrimSpace(*req.Theme))
		if v != "light" && v != "dark" {
			writeError(w, 400, "theme must be light or dark")
			return
		}
		p.Theme = &v
	}
	if p.Name == nil && p.Role == nil && p.Skills == nil && p.LookingFor == nil && p.Avatar == nil && p.Theme == nil {
		writeError(w, 400, "nothing to update")
		return
	}
	if err := a.store.UpdateProfile(r.Context(), me.ID, p); err != nil {
		if errors.Is(err, ErrInvalid) {
			writeError(w, 400, "invalid profile")
			return
		}
		a.log.Error("update me", "err", err)
		writeError(w, 400, "cannot update profile")
		return
	}
	u, err := a.store.UserByID(r.Context(), me.ID)
	if err != nil {
		writeJSON(w, 200, map[string]any{"ok": true})
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "user": u})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
