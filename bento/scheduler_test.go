package bento

import (
	"math"
	"testing"
	"time"

	"hackpulse/clock"
)

func newTestScheduler() (*Scheduler, *clock.FakeClock) {
	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewScheduler(c), c
}

func TestSchedulerFiresInDeadlineOrder(t *testing.T) {
	s, c := newTestScheduler()
	var got []int
	s.After(300*time.Millisecond, func() { got = append(got, 3) })
	s.After(100*time.Millisecond, func() { got = append(got, 1) })
	s.After(200*time.Millisecond, func() { got = append(got, 2) })
	s.After(200*time.Millisecond, func() { got = append(got, 22) })

	c.Advance(250 * time.Millisecond)
	s.Tick()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 22 {
		t.Fatalf("expected [1 2 22], got %v", got)
	}

	c.Advance(time.Second)
	s.Tick()
	if len(got) != 4 || got[3] != 3 {
		t.Fatalf("expected 3 last, got %v", got)
	}
	if timers, _ := s.Pending(); timers != 0 {
		t.Errorf("expected no pending timers, got %d", timers)
	}
}

func TestSchedulerZeroDelayWaitsForTick(t *testing.T) {
	s, _ := newTestScheduler()
	fired := 0
	s.After(0, func() {
		fired++
		// rescheduling from a callback must not loop within one tick
		s.After(0, func() { fired++ })
	})
	if fired != 0 {
		t.Fatal("expected callback to wait for Tick")
	}
	s.Tick()
	if fired != 1 {
		t.Fatalf("expected 1 call after first tick, got %d", fired)
	}
	s.Tick()
	if fired != 2 {
		t.Fatalf("expected 2 calls after second tick, got %d", fired)
	}
}

func TestTimerStop(t *testing.T) {
	s, c := newTestScheduler()
	fired := false
	tm := s.After(10*time.Millisecond, func() { fired = true })
	if !tm.Pending() {
		t.Fatal("expected pending timer")
	}
	if !tm.Stop() {
		t.Fatal("expected Stop to report a pending timer")
	}
	if tm.Stop() {
		t.Error("expected second Stop to report false")
	}
	c.Advance(time.Second)
	s.Tick()
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestTimerStoppedByEarlierCallback(t *testing.T) {
	s, c := newTestScheduler()
	fired := false
	var second *Timer
	s.After(time.Millisecond, func() { second.Stop() })
	second = s.After(2*time.Millisecond, func() { fired = true })
	c.Advance(time.Second)
	s.Tick()
	if fired {
		t.Error("timer stopped during tick still fired")
	}
}

func TestTweenCompletes(t *testing.T) {
	s, c := newTestScheduler()
	var last float64 = -1
	done := 0
	s.Tween(TweenSpec{
		Duration: 100 * time.Millisecond,
		Update:   func(p float64) { last = p },
		Complete: func() { done++ },
	})
	if last != 0 {
		t.Fatalf("expected immediate start value 0, got %v", last)
	}
	c.Advance(50 * time.Millisecond)
	s.Tick()
	if math.Abs(last-0.5) > 1e-9 {
		t.Errorf("expected 0.5 halfway, got %v", last)
	}
	c.Advance(time.Second)
	s.Tick()
	s.Tick()
	if last != 1 || done != 1 {
		t.Errorf("expected final 1 and one completion, got %v and %d", last, done)
	}
	if _, tweens := s.Pending(); tweens != 0 {
		t.Errorf("expected no live tweens, got %d", tweens)
	}
}

func TestTweenYoyoForever(t *testing.T) {
	s, c := newTestScheduler()
	var last float64
	tw := s.Tween(TweenSpec{
		Duration: 100 * time.Millisecond,
		Repeat:   Forever,
		Yoyo:     true,
		Update:   func(p float64) { last = p },
	})
	c.Advance(125 * time.Millisecond)
	s.Tick()
	if math.Abs(last-0.75) > 1e-9 {
		t.Errorf("expected 0.75 on the way back, got %v", last)
	}
	c.Advance(time.Hour)
	s.Tick()
	if !tw.Active() {
		t.Fatal("expected forever tween to keep running")
	}
	tw.Kill()
	before := last
	c.Advance(33 * time.Millisecond)
	s.Tick()
	if last != before {
		t.Error("killed tween kept updating")
	}
}

func TestTweenYoyoFiniteEndsAtStart(t *testing.T) {
	s, c := newTestScheduler()
	var last float64
	s.Tween(TweenSpec{Duration: 10 * time.Millisecond, Repeat: 1, Yoyo: true, Update: func(p float64) { last = p }})
	c.Advance(time.Second)
	s.Tick()
	if last != 0 {
		t.Errorf("expected yoyo with one repeat to end at 0, got %v", last)
	}
}

func TestEasesHitEndpoints(t *testing.T) {
	for name, e := range map[string]Ease{"linear": Linear, "powerOut": PowerOut, "powerInOut": PowerInOut, "backOut": BackOut} {
		if math.Abs(e(0)) > 1e-9 || math.Abs(e(1)-1) > 1e-9 {
			t.Errorf("%s: expected 0->0 and 1->1, got %v and %v", name, e(0), e(1))
		}
	}
}
