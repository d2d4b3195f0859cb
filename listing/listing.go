// Package listing holds the static hackathon, winner and team-request
// listings shown on the site.
package listing

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Glow colors per grid, as "r, g, b".
const (
	ColorHackathons = "132, 0, 255"
	ColorWinners    = "255, 215, 0"
	ColorTeam       = "0, 255, 136"
	ColorMembers    = "0, 255, 208"
)

// FilterAll disables filtering.
const FilterAll = "all"

type Hackathon struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer"`
	Date      string    `json:"date"`
	Mode      string    `json:"mode"`
	Image     string    `json:"image"`
	Tags      []string  `json:"tags"`
	Deadline  time.Time `json:"deadline"`
}

type Winner struct {
	ID       int      `json:"id"`
	TeamName string   `json:"team_name"`
	Project  string   `json:"project"`
	Members  []string `json:"members"`
	Image    string   `json:"image"`
	Repo     string   `json:"repo"`
	Demo     string   `json:"demo"`
}

type TeamRequest struct {
	ID         int      `json:"id"`
	User       string   `json:"user"`
	Role       string   `json:"role"`
	LookingFor []string `json:"looking_for"`
	Event      string   `json:"event"`
	Skills     []string `json:"skills"`
	Avatar     string   `json:"avatar,omitempty"`
}

func deadline(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

var hackathons = []Hackathon{
	{
		ID: 1, Title: "InnovateX 2026", Organizer: "TechCorp Inc.", Date: "Feb 15 - 17, 2026", Mode: "Online",
		Image:    "https://images.unsplash.com/photo-1504384308090-c54be3855485?auto=format&fit=crop&q=80&w=600",
		Tags:     []string{"AI", "Blockchain"},
		Deadline: deadline("2026-02-10T23:59:59"),
	},
	{
		ID: 2, Title: "CodeSprint Global", Organizer: "DevCommunity", Date: "Mar 05 - 07, 2026", Mode: "Offline - NYC",
		Image:    "https://images.unsplash.com/photo-1517048676732-d65bc937f952?auto=format&fit=crop&q=80&w=600",
		Tags:     []string{"Web", "Cloud"},
		Deadline: deadline("2026-03-01T23:59:59"),
	},
	{
		ID: 3, Title: "Hack The Future", Organizer: "University of Tech", Date: "Mar 20 - 22, 2026", Mode: "Hybrid",
		Image:    "https://images.unsplash.com/photo-1542831371-29b0f74f9713?auto=format&fit=crop&q=80&w=600",
		Tags:     []string{"IoT", "GreenTech"},
		Deadline: deadline("2026-03-15T23:59:59"),
	},
}

var winners = []Winner{
	{
		ID: 1, TeamName: "Neural Ninjas", Project: "AI Health Assistant", Members: []string{"Alex", "Sam", "Jordan"},
		Image: "https://images.unsplash.com/photo-1522071820081-009f0129c71c?auto=format&fit=crop&q=80&w=600",
		Repo:  "#", Demo: "#",
	},
	{
		ID: 2, TeamName: "BlockChain Gang", Project: "Decentralized Vote", Members: []string{"Chris", "Pat", "Taylor"},
		Image: "https://images.unsplash.com/photo-1519389950473-47ba0277781c?auto=format&fit=crop&q=80&w=600",
		Repo:  "#", Demo: "#",
	},
}

var teamRequests = []TeamRequest{
	{
		ID: 1, User: "Sarah Chen", Role: "Frontend Dev", LookingFor: []string{"Backend", "UI/UX"},
		Event: "InnovateX 2026", Skills: []string{"React", "Tailwind"}, Avatar: "https://i.pravatar.cc/150?u=sarah",
	},
	{
		ID: 2, User: "Mike Ross", Role: "Full Stack", LookingFor: []string{"AI/ML Engineer"},
		Event: "CodeSprint Global", Skills: []string{"Node.js", "Python"},
	},
}

// Hackathons returns a copy of the listing.
func Hackathons() []Hackathon {
	out := slices.Clone(hackathons)
	for i := range out {
		out[i].Tags = slices.Clone(out[i].Tags)
	}
	return out
}

func Winners() []Winner {
	out := slices.Clone(winners)
	for i := range out {
		out[i].Members = slices.Clone(out[i].Members)
	}
	return out
}

func TeamRequests() []TeamRequest {
	out := slices.Clone(teamRequests)
	for i := range out {
		out[i].LookingFor = slices.Clone(out[i].LookingFor)
		out[i].Skills = slices.Clone(out[i].Skills)
	}
	return out
}

// Filter keeps hackathons whose mode contains filter or that carry
// filter as a tag. Matching is case-sensitive. "" and "all" keep
// everything.
func Filter(hs []Hackathon, filter string) []Hackathon {
	if filter == "" || filter == FilterAll {
		return hs
	}
	var out []Hackathon
	for _, h := range hs {
		if strings.Contains(h.Mode, filter) || slices.Contains(h.Tags, filter) {
			out = append(out, h)
		}
	}
	return out
}

// Countdown renders the time left until deadline.
func Countdown(deadline, now time.Time) string {
	diff := deadline.Sub(now)
	if diff < 0 {
		return "Expired"
	}
	days := int(diff / (24 * time.Hour))
	hours := int(diff % (24 * time.Hour) / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	return fmt.Sprintf("%dd %dh %dm left", days, hours, minutes)
}
