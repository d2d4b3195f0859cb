package listing

import (
	"testing"
	"time"
)

func TestFilter(t *testing.T) {
	hs := Hackathons()
	tests := []struct {
		filter string
		want   []int
	}{
		{"all", []int{1, 2, 3}},
		{"", []int{1, 2, 3}},
		{"Online", []int{1}},
		{"Offline", []int{2}},
		{"NYC", []int{2}},
		{"AI", []int{1}},
		{"GreenTech", []int{3}},
		{"ai", nil},
		{"Green", nil},
	}
	for _, tt := range tests {
		got := Filter(hs, tt.filter)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q): expected ids %v, got %d results", tt.filter, tt.want, len(got))
			continue
		}
		for i, h := range got {
			if h.ID != tt.want[i] {
				t.Errorf("Filter(%q): expected ids %v, got id %d at %d", tt.filter, tt.want, h.ID, i)
			}
		}
	}
}

func TestCountdown(t *testing.T) {
	deadline := time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want string
	}{
		{deadline.Add(time.Second), "Expired"},
		{deadline, "0d 0h 0m left"},
		{deadline.Add(-90 * time.Second), "0d 0h 1m left"},
		{deadline.Add(-(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second)), "2d 3h 4m left"},
	}
	for _, tt := range tests {
		if got := Countdown(deadline, tt.now); got != tt.want {
			t.Errorf("Countdown at %v: expected %q, got %q", tt.now, tt.want, got)
		}
	}
}

func TestListingsAreCopies(t *testing.T) {
	hs := Hackathons()
	hs[0].Tags[0] = "changed"
	if Hackathons()[0].Tags[0] != "AI" {
		t.Error("expected listing unaffected by caller mutation")
	}
	if len(Winners()) != 2 || len(TeamRequests()) != 2 {
		t.Error("expected two winners and two team requests")
	}
	if !Hackathons()[0].Deadline.Equal(time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected deadline %v", Hackathons()[0].Deadline)
	}
}
