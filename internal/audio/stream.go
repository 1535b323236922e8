package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the F32 little-endian byte stream
// ebiten's audio player consumes.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Output plays a sample source on the shared ebiten audio context.
type Output struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewOutput binds source to the device. Playback starts with Play.
func NewOutput(sampleRate int, source SampleSource) (*Output, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	// Keep the device buffer short; loop hand-off is scheduled on the bus
	// clock, so latency only delays what is heard, not the stitch.
	pl.SetBufferSize(50 * time.Millisecond)
	return &Output{
		player: pl,
		reader: reader,
	}, nil
}

func (o *Output) Play()  { o.player.Play() }
func (o *Output) Pause() { o.player.Pause() }
func (o *Output) IsPlaying() bool {
	return o.player.IsPlaying()
}

// Position returns what the listener actually hears.
func (o *Output) Position() time.Duration {
	return o.player.Position()
}

func (o *Output) Close() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.reader.Close()
}
