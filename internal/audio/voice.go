package audio

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/stemloop-go/internal/clip"
)

// Voice plays one clip on a bus. It satisfies the player's channel contract;
// control methods are called from the tick goroutine while mixInto runs on
// the audio thread, so all shared state is atomic.
type Voice struct {
	bus  *Bus
	clip *clip.Clip

	playing  atomic.Bool
	start    atomic.Int64 // bus frame at which clip frame 0 plays
	loop     atomic.Bool
	gainBits atomic.Uint64
}

// NewVoice attaches a stopped voice for c to bus at unity gain.
func NewVoice(bus *Bus, c *clip.Clip) *Voice {
	v := &Voice{bus: bus, clip: c}
	v.gainBits.Store(math.Float64bits(1))
	bus.attach(v)
	return v
}

func (v *Voice) Clip() *clip.Clip { return v.clip }

func (v *Voice) Play() {
	v.start.Store(v.bus.Frame())
	v.playing.Store(true)
}

func (v *Voice) PlayScheduled(at float64) {
	v.start.Store(v.bus.frameAt(at))
	v.playing.Store(true)
}

func (v *Voice) Stop() { v.playing.Store(false) }

// Close stops the voice and detaches it from its bus. It is not reusable
// afterwards.
func (v *Voice) Close() error {
	v.Stop()
	v.bus.Detach(v)
	return nil
}

func (v *Voice) IsPlaying() bool { return v.playing.Load() }

func (v *Voice) SetVolume(gain float64) {
	v.gainBits.Store(math.Float64bits(gain))
}

func (v *Voice) Volume() float64 {
	return math.Float64frombits(v.gainBits.Load())
}

func (v *Voice) SetLoop(loop bool) { v.loop.Store(loop) }

func (v *Voice) Load() { v.clip.Load() }

func (v *Voice) IsLoaded() bool { return v.clip.Loaded() }

func (v *Voice) SampleCount() int { return v.clip.Frames() }

func (v *Voice) SampleRate() int { return v.clip.SampleRate() }

// mixInto adds this voice's contribution for frames [base, base+len(dst)/2).
func (v *Voice) mixInto(dst []float32, base int64) {
	if !v.playing.Load() || !v.clip.Loaded() {
		return
	}
	samples := v.clip.Samples()
	length := int64(len(samples) / 2)
	if length == 0 {
		return
	}
	start := v.start.Load()
	loop := v.loop.Load()
	gain := float32(v.Volume())
	frames := int64(len(dst) / 2)

	for i := int64(0); i < frames; i++ {
		pos := base + i - start
		if pos < 0 {
			continue
		}
		if pos >= length {
			if !loop {
				v.playing.CompareAndSwap(true, false)
				return
			}
			pos %= length
		}
		dst[i*2] += samples[pos*2] * gain
		dst[i*2+1] += samples[pos*2+1] * gain
	}
}
