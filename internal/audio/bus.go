package audio

import (
	"sync"
	"sync/atomic"
)

// Bus mixes every attached voice into one stereo stream. The number of frames
// it has rendered is the DSP clock that voices are scheduled against.
type Bus struct {
	sampleRate int
	frame      atomic.Int64

	mu     sync.Mutex
	voices []*Voice
}

func NewBus(sampleRate int) *Bus {
	return &Bus{sampleRate: sampleRate}
}

func (b *Bus) SampleRate() int { return b.sampleRate }

// Frame returns the index of the next frame to be rendered.
func (b *Bus) Frame() int64 { return b.frame.Load() }

// Now returns the DSP clock in seconds.
func (b *Bus) Now() float64 {
	return float64(b.frame.Load()) / float64(b.sampleRate)
}

// frameAt converts a DSP timestamp to the nearest frame index.
func (b *Bus) frameAt(t float64) int64 {
	f := t * float64(b.sampleRate)
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}

func (b *Bus) attach(v *Voice) {
	b.mu.Lock()
	b.voices = append(b.voices, v)
	b.mu.Unlock()
}

// Detach removes v from the mix.
func (b *Bus) Detach(v *Voice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.voices {
		if cur == v {
			b.voices = append(b.voices[:i], b.voices[i+1:]...)
			return
		}
	}
}

// Process renders len(dst)/2 stereo frames and advances the clock.
func (b *Bus) Process(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	frames := len(dst) / 2
	base := b.frame.Load()

	b.mu.Lock()
	for _, v := range b.voices {
		v.mixInto(dst, base)
	}
	b.mu.Unlock()

	b.frame.Add(int64(frames))
}
