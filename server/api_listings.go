package main

import (
	"net/http"

	"hackpulse/listing"
)

type hackathonView struct {
	listing.Hackathon
	Countdown string `json:"countdown"`
}

// GET /api/hackathons?filter=
func (a *api) handleHackathons(w http.ResponseWriter, r *http.Request) {
	now := a.now()
	hs := listing.Filter(listing.Hackathons(), r.URL.Query().Get("filter"))
	out := make([]hackathonView, 0, len(hs))
	for _, h := range hs {
		out = append(out, hackathonView{Hackathon: h, Countdown: listing.Countdown(h.Deadline, now)})
	}
	writeJSON(w, 200, map[string]any{"hackathons": out, "color": listing.ColorHackathons})
}

func (a *api) handleWinners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"winners": listing.Winners(), "color": listing.ColorWinners})
}

func (a *api) handleTeamRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"team_requests": listing.TeamRequests(), "color": listing.ColorTeam})
}
