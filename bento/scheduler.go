package bento

import (
	"time"

	"github.com/tidwall/btree"

	"hackpulse/clock"
)

// Scheduler owns every timer and tween of the interaction engine.
//
// It is not safe for concurrent use. The host calls Tick from its frame
// loop and dispatches input events on the same goroutine, which keeps
// the engine single-threaded: a stopped timer or killed tween can never
// run afterwards because nothing runs outside Tick.
type Scheduler struct {
	clock  clock.Clock
	timers *btree.BTreeG[*Timer]
	seq    uint64
	tweens []*Tween
}

// Timer is a one-shot callback registered with After.
type Timer struct {
	s        *Scheduler
	deadline time.Time
	seq      uint64
	fn       func()
	done     bool
}

func timerLess(a, b *Timer) bool {
	if a.deadline.Equal(b.deadline) {
		return a.seq < b.seq
	}
	return a.deadline.Before(b.deadline)
}

func NewScheduler(c clock.Clock) *Scheduler {
	return &Scheduler{clock: c, timers: btree.NewBTreeG(timerLess)}
}

func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// After schedules fn to run on the first Tick at or after now+d. A zero
// delay still waits for the next Tick.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{s: s, deadline: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.timers.Set(t)
	return t
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.done {
		return false
	}
	t.done = true
	t.s.timers.Delete(t)
	return true
}

// Pending reports whether the timer has neither fired nor been stopped.
func (t *Timer) Pending() bool { return t != nil && !t.done }

// Tween starts an animation. The first Update call happens immediately
// with the eased start value so the target never shows a stale frame.
func (s *Scheduler) Tween(spec TweenSpec) *Tween {
	if spec.Ease == nil {
		spec.Ease = Linear
	}
	tw := &Tween{s: s, spec: spec, start: s.clock.Now()}
	s.tweens = append(s.tweens, tw)
	if spec.Update != nil {
		spec.Update(spec.Ease(0))
	}
	return tw
}

// Tick fires every due timer in deadline order and then advances every
// live tween to the current time. Timers created while ticking, even
// with a zero delay, wait for the next Tick.
func (s *Scheduler) Tick() {
	now := s.clock.Now()

	var due []*Timer
	s.timers.Scan(func(t *Timer) bool {
		if t.deadline.After(now) {
			return false
		}
		due = append(due, t)
		return true
	})
	for _, t := range due {
		// an earlier callback may have stopped it
		if t.done {
			continue
		}
		s.timers.Delete(t)
		t.done = true
		t.fn()
	}

	current := s.tweens
	s.tweens = nil
	var finished []*Tween
	for _, tw := range current {
		if tw.killed {
			continue
		}
		if tw.step(now) {
			tw.killed = true
			finished = append(finished, tw)
			continue
		}
		s.tweens = append(s.tweens, tw)
	}
	for _, tw := range finished {
		if tw.spec.Complete != nil {
			tw.spec.Complete()
		}
	}
}

// Pending returns the number of scheduled timers and running tweens.
func (s *Scheduler) Pending() (timers, tweens int) {
	n := 0
	for _, tw := range s.tweens {
		if !tw.killed {
			n++
		}
	}
	return s.timers.Len(), n
}
