package stemloop

import (
	"errors"

	"github.com/rs/zerolog"

	intaudio "github.com/cbegin/stemloop-go/internal/audio"
	"github.com/cbegin/stemloop-go/internal/clip"
)

var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Bus mixes voices into one stereo stream and provides the DSP clock.
type Bus = intaudio.Bus

// Voice is a Channel backed by a clip playing on a Bus.
type Voice = intaudio.Voice

// Clip is stereo float32 PCM, loaded on demand.
type Clip = clip.Clip

// Output plays a Bus on the system audio device.
type Output = intaudio.Output

func NewBus(sampleRate int) (*Bus, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return intaudio.NewBus(sampleRate), nil
}

// NewVoice attaches a new stopped voice for c to bus.
func NewVoice(bus *Bus, c *Clip) *Voice {
	return intaudio.NewVoice(bus, c)
}

// LoadClip returns a file-backed clip (.wav or .ogg) resampled to sampleRate.
// Decoding starts when the clip's Load is called, which registering its
// voice with a preloading Player does.
func LoadClip(path string, sampleRate int, logger zerolog.Logger) *Clip {
	return clip.New(path, sampleRate, logger)
}

// ClipFromSamples wraps interleaved stereo samples as an already loaded clip.
func ClipFromSamples(samples []float32, sampleRate int) *Clip {
	return clip.FromSamples(samples, sampleRate)
}

// OpenOutput starts playing bus on the audio device. Only one sample rate
// can be used per process.
func OpenOutput(bus *Bus) (*Output, error) {
	out, err := intaudio.NewOutput(bus.SampleRate(), bus)
	if err != nil {
		return nil, err
	}
	out.Play()
	return out, nil
}
