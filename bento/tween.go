package bento

import (
	"math"
	"time"
)

// Ease maps linear progress 0..1 to eased progress.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

// PowerOut decelerates quadratically.
func PowerOut(t float64) float64 { return 1 - (1-t)*(1-t) }

// PowerInOut accelerates then decelerates quadratically.
func PowerInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// BackOut overshoots slightly past 1 before settling.
func BackOut(t float64) float64 {
	const c1 = 1.7
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

// Forever repeats a tween until it is killed.
const Forever = -1

type TweenSpec struct {
	Duration time.Duration
	Ease     Ease
	// Repeat is the number of extra cycles after the first one, or Forever.
	Repeat int
	// Yoyo plays every odd cycle backwards.
	Yoyo bool
	// Update receives eased progress, normally 0..1.
	Update func(progress float64)
	// Complete runs once after the last cycle. Never called for killed or
	// Forever tweens.
	Complete func()
}

type Tween struct {
	s      *Scheduler
	spec   TweenSpec
	start  time.Time
	killed bool
}

// Kill stops the tween where it is. Complete is not called.
func (tw *Tween) Kill() {
	if tw != nil {
		tw.killed = true
	}
}

// Active reports whether the tween is still running.
func (tw *Tween) Active() bool { return tw != nil && !tw.killed }

// step applies the tween at now and reports whether it has finished.
func (tw *Tween) step(now time.Time) bool {
	d := tw.spec.Duration
	if d <= 0 {
		tw.apply(1)
		return true
	}
	elapsed := now.Sub(tw.start)
	if elapsed < 0 {
		elapsed = 0
	}
	cycle := int(elapsed / d)
	if tw.spec.Repeat != Forever && cycle > tw.spec.Repeat {
		last := 1.0
		if tw.spec.Yoyo && tw.spec.Repeat%2 == 1 {
			last = 0
		}
		tw.apply(last)
		return true
	}
	frac := float64(elapsed%d) / float64(d)
	if tw.spec.Yoyo && cycle%2 == 1 {
		frac = 1 - frac
	}
	tw.apply(frac)
	return false
}

func (tw *Tween) apply(frac float64) {
	if tw.spec.Update != nil {
		tw.spec.Update(tw.spec.Ease(frac))
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
