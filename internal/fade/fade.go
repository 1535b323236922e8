// Package fade holds the resumable fade tasks driven by the player tick.
//
// A task is advanced with the elapsed wall time since the previous tick and
// reports its current value plus whether it has reached its end. Tasks carry
// no goroutines; cancelling one is dropping the reference.
package fade

import (
	"time"

	"github.com/cbegin/stemloop-go/internal/profile"
)

// Crossfade blends one profile into another linearly over a duration.
type Crossfade struct {
	from     profile.Profile
	to       profile.Profile
	elapsed  time.Duration
	duration time.Duration
}

// NewCrossfade snapshots both endpoints, so later changes to the caller's
// maps do not leak into a running fade.
func NewCrossfade(from, to profile.Profile, duration time.Duration) *Crossfade {
	return &Crossfade{
		from:     from.Clone(),
		to:       to.Clone(),
		duration: duration,
	}
}

// Target returns the profile the fade ends on.
func (c *Crossfade) Target() profile.Profile { return c.to }

// Progress returns how far the fade has come, in [0, 1].
func (c *Crossfade) Progress() float64 {
	return progress(c.elapsed, c.duration)
}

// Current returns the blended profile at the current progress.
func (c *Crossfade) Current() profile.Profile {
	return profile.Lerp(c.from, c.to, c.Progress())
}

// Advance moves the fade forward by dt and returns the blended profile.
func (c *Crossfade) Advance(dt time.Duration) (profile.Profile, bool) {
	c.elapsed += dt
	p := c.Progress()
	return profile.Lerp(c.from, c.to, p), p >= 1
}

// Envelope moves a scalar gain linearly from one value to another.
type Envelope struct {
	from     float64
	to       float64
	elapsed  time.Duration
	duration time.Duration
}

func NewEnvelope(from, to float64, duration time.Duration) *Envelope {
	return &Envelope{from: from, to: to, duration: duration}
}

func (e *Envelope) Target() float64 { return e.to }

func (e *Envelope) Progress() float64 {
	return progress(e.elapsed, e.duration)
}

// Value returns the envelope gain at the current progress.
func (e *Envelope) Value() float64 {
	p := e.Progress()
	if p >= 1 {
		return e.to
	}
	return e.from + (e.to-e.from)*p
}

// Advance moves the envelope forward by dt and returns its value.
func (e *Envelope) Advance(dt time.Duration) (float64, bool) {
	e.elapsed += dt
	return e.Value(), e.Progress() >= 1
}

func progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(duration)
}
