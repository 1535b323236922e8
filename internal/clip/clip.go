package clip

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrUnsupportedFormat = errors.New("unsupported clip format")

// Clip is interleaved stereo float32 PCM at a fixed sample rate.
// File-backed clips decode in the background once Load is called.
type Clip struct {
	path       string
	sampleRate int
	logger     zerolog.Logger

	once    sync.Once
	done    chan struct{}
	loaded  atomic.Bool
	samples []float32 // published by loaded
	err     error     // set before done is closed
}

// New returns an unloaded clip for a .wav or .ogg file, decoded and
// resampled to sampleRate.
func New(path string, sampleRate int, logger zerolog.Logger) *Clip {
	return &Clip{
		path:       path,
		sampleRate: sampleRate,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// FromSamples wraps already-decoded stereo samples. The clip is loaded.
func FromSamples(samples []float32, sampleRate int) *Clip {
	c := &Clip{
		sampleRate: sampleRate,
		samples:    samples,
		done:       make(chan struct{}),
		logger:     zerolog.Nop(),
	}
	c.once.Do(func() {})
	c.loaded.Store(true)
	close(c.done)
	return c
}

func (c *Clip) Path() string { return c.path }
func (c *Clip) SampleRate() int { return c.sampleRate }
func (c *Clip) Loaded() bool { return c.loaded.Load() }

// Frames returns the clip length in sample frames, 0 until loaded.
func (c *Clip) Frames() int {
	if !c.loaded.Load() {
		return 0
	}
	return len(c.samples) / 2
}

// Samples returns the decoded data, nil until loaded. Callers must not modify it.
func (c *Clip) Samples() []float32 {
	if !c.loaded.Load() {
		return nil
	}
	return c.samples
}

// Load starts decoding in the background. Later calls do nothing.
func (c *Clip) Load() {
	c.once.Do(func() {
		go c.decode()
	})
}

// Err returns the decode error once loading has finished.
func (c *Clip) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until loading finishes or ctx is done. It does not start
// loading by itself.
func (c *Clip) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Clip) decode() {
	defer close(c.done)
	samples, err := decodeFile(c.path, c.sampleRate)
	if err != nil {
		c.err = fmt.Errorf("load %s: %w", c.path, err)
		c.logger.Error().Err(err).Str("path", c.path).Msg("clip load failed")
		return
	}
	c.samples = samples
	c.loaded.Store(true)
	c.logger.Debug().Str("path", c.path).Int("frames", len(samples)/2).Msg("clip loaded")
}

func decodeFile(path string, sampleRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stream io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, f)
		if err != nil {
			return nil, err
		}
		stream = s
	case ".ogg", ".oga":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, f)
		if err != nil {
			return nil, err
		}
		stream = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	return int16ToFloat(raw), nil
}

// int16ToFloat converts the decoders' 16-bit little-endian stereo output.
func int16ToFloat(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out
}

// LoadAll starts every clip loading and waits for all of them.
// The first decode error cancels the wait.
func LoadAll(ctx context.Context, clips ...*Clip) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range clips {
		c.Load()
		g.Go(func() error {
			return c.Wait(ctx)
		})
	}
	return g.Wait()
}
